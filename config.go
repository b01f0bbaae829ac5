package govroute

import (
	"encoding/json"
	"io"
	"reflect"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"

	"github.com/govroute/govroute/sdk"
	"github.com/govroute/govroute/sdk/memqueue"
	"github.com/govroute/govroute/types"
)

// BucketConfig describes one delay bucket. The position of the entry in the
// config's bucket list is the proposal type it serves.
type BucketConfig struct {
	Address  string         `json:"address" validate:"required,eth_addr"`
	MinDelay types.Duration `json:"minDelay" validate:"required"`
}

// Config describes a full routing deployment: the governance instance, its
// registry identity, and the ordered bucket list.
type Config struct {
	GovernanceAddress string         `json:"governanceAddress" validate:"required,eth_addr"`
	RegistryAddress   string         `json:"registryAddress" validate:"required,eth_addr"`
	Buckets           []BucketConfig `json:"buckets" validate:"required,min=1,dive"`
}

// NewConfig decodes a JSON config from the reader and validates it.
func NewConfig(r io.Reader) (*Config, error) {
	var c Config
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

func (c *Config) Validate() error {
	validate := validator.New()

	// Validate types.Duration as its underlying time.Duration; otherwise the
	// validator dives into the wrapper struct and `required` never sees the
	// zero value, letting a bucket without a delay through.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(types.Duration); ok {
			return d.Duration
		}

		return nil
	}, types.Duration{})

	return validate.Struct(c)
}

// BuildRegistry constructs a BucketRegistry backed by in-process queues, one
// per configured bucket. The given queue options apply to every bucket.
func (c *Config) BuildRegistry(opts ...memqueue.Option) (*BucketRegistry, error) {
	buckets := make([]sdk.DelayQueue, len(c.Buckets))
	for i, bc := range c.Buckets {
		buckets[i] = memqueue.New(common.HexToAddress(bc.Address), bc.MinDelay, opts...)
	}

	return NewBucketRegistry(common.HexToAddress(c.RegistryAddress), buckets)
}

// BuildBinding constructs the registry from the config and binds it to the
// given voting engine.
func (c *Config) BuildBinding(
	engine sdk.VotingEngine, bindingOpts []BindingOption, queueOpts ...memqueue.Option,
) (*TimelockBinding, error) {
	registry, err := c.BuildRegistry(queueOpts...)
	if err != nil {
		return nil, err
	}

	return NewTimelockBinding(common.HexToAddress(c.GovernanceAddress), registry, engine, bindingOpts...)
}
