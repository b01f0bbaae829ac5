package memqueue

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govroute/govroute/internal/testutils"
	"github.com/govroute/govroute/sdk"
	sdkerrors "github.com/govroute/govroute/sdk/errors"
	"github.com/govroute/govroute/types"
)

var (
	queueAddr  = common.HexToAddress("0x1111111111111111111111111111111111111111")
	targetAddr = common.HexToAddress("0x2222222222222222222222222222222222222222")
	otherAddr  = common.HexToAddress("0x3333333333333333333333333333333333333333")

	testSalt = common.HexToHash("0x01")
)

func testBatch(data string) types.BatchOperation {
	return types.BatchOperation{
		Calls: []types.Call{types.NewCall(targetAddr, []byte(data), nil)},
	}
}

func newTestQueue(t *testing.T, minDelay time.Duration, opts ...Option) (*Queue, *testutils.Clock) {
	t.Helper()

	clk := testutils.NewClock(time.Unix(1700000000, 0))
	opts = append([]Option{WithClock(clk.Now)}, opts...)

	return New(queueAddr, types.NewDuration(minDelay), opts...), clk
}

func Test_HashOperationBatch(t *testing.T) {
	t.Parallel()

	q, _ := newTestQueue(t, time.Hour)

	got1, err := q.HashOperationBatch(testBatch("data"), common.Hash{}, testSalt)
	require.NoError(t, err)
	got2, err := q.HashOperationBatch(testBatch("data"), common.Hash{}, testSalt)
	require.NoError(t, err)

	assert.Equal(t, got1, got2, "hash must be deterministic")
	assert.NotEqual(t, common.Hash{}, got1)

	gotOtherSalt, err := q.HashOperationBatch(testBatch("data"), common.Hash{}, common.HexToHash("0x02"))
	require.NoError(t, err)
	assert.NotEqual(t, got1, gotOtherSalt, "salt must contribute to the id")

	gotOtherBatch, err := q.HashOperationBatch(testBatch("other"), common.Hash{}, testSalt)
	require.NoError(t, err)
	assert.NotEqual(t, got1, gotOtherBatch, "calls must contribute to the id")
}

func Test_HashOperationBatch_NilValueNormalized(t *testing.T) {
	t.Parallel()

	q, _ := newTestQueue(t, time.Hour)

	nilValue := types.BatchOperation{Calls: []types.Call{{Target: targetAddr, Data: []byte("x")}}}
	zeroValue := types.BatchOperation{
		Calls: []types.Call{{Target: targetAddr, Data: []byte("x"), Value: big.NewInt(0)}},
	}

	got1, err := q.HashOperationBatch(nilValue, common.Hash{}, testSalt)
	require.NoError(t, err)
	got2, err := q.HashOperationBatch(zeroValue, common.Hash{}, testSalt)
	require.NoError(t, err)

	assert.Equal(t, got1, got2)
}

func Test_Queue_Lifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q, clk := newTestQueue(t, time.Hour)
	bop := testBatch("data")

	opID, err := q.HashOperationBatch(bop, common.Hash{}, testSalt)
	require.NoError(t, err)

	// Unset: neither pending nor done.
	pending, err := q.IsOperationPending(ctx, opID)
	require.NoError(t, err)
	assert.False(t, pending)

	require.NoError(t, q.Schedule(ctx, bop, common.Hash{}, testSalt, types.NewDuration(time.Hour)))

	pending, err = q.IsOperationPending(ctx, opID)
	require.NoError(t, err)
	assert.True(t, pending)

	ready, err := q.IsOperationReady(ctx, opID)
	require.NoError(t, err)
	assert.False(t, ready, "delay has not elapsed")

	// Executing before the delay elapses fails and leaves the operation pending.
	err = q.Execute(ctx, bop, common.Hash{}, testSalt, nil)
	var notReady *sdkerrors.OperationNotReadyError
	require.ErrorAs(t, err, &notReady)
	assert.Equal(t, opID, notReady.OpID)

	clk.Advance(time.Hour)

	ready, err = q.IsOperationReady(ctx, opID)
	require.NoError(t, err)
	assert.True(t, ready)

	require.NoError(t, q.Execute(ctx, bop, common.Hash{}, testSalt, nil))

	done, err := q.IsOperationDone(ctx, opID)
	require.NoError(t, err)
	assert.True(t, done)

	pending, err = q.IsOperationPending(ctx, opID)
	require.NoError(t, err)
	assert.False(t, pending)

	// Second execution: no longer Ready.
	err = q.Execute(ctx, bop, common.Hash{}, testSalt, nil)
	require.ErrorAs(t, err, &notReady)
}

func Test_Queue_Schedule_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q, _ := newTestQueue(t, time.Hour)
	bop := testBatch("data")

	require.NoError(t, q.Schedule(ctx, bop, common.Hash{}, testSalt, types.NewDuration(time.Hour)))

	err := q.Schedule(ctx, bop, common.Hash{}, testSalt, types.NewDuration(time.Hour))
	var alreadyScheduled *sdkerrors.OperationAlreadyScheduledError
	require.ErrorAs(t, err, &alreadyScheduled)

	err = q.Schedule(ctx, testBatch("other"), common.Hash{}, testSalt, types.NewDuration(time.Minute))
	var insufficient *sdkerrors.InsufficientDelayError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, types.NewDuration(time.Minute), insufficient.Delay)
	assert.Equal(t, types.NewDuration(time.Hour), insufficient.MinDelay)
}

func Test_Queue_Cancel(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q, clk := newTestQueue(t, time.Hour)
	bop := testBatch("data")

	opID, err := q.HashOperationBatch(bop, common.Hash{}, testSalt)
	require.NoError(t, err)

	// Unset operations are not cancelable.
	var notCancelable *sdkerrors.OperationNotCancelableError
	require.ErrorAs(t, q.Cancel(ctx, opID), &notCancelable)

	require.NoError(t, q.Schedule(ctx, bop, common.Hash{}, testSalt, types.NewDuration(time.Hour)))
	require.NoError(t, q.Cancel(ctx, opID))

	// Canceled operations read as neither pending nor done.
	pending, err := q.IsOperationPending(ctx, opID)
	require.NoError(t, err)
	assert.False(t, pending)
	done, err := q.IsOperationDone(ctx, opID)
	require.NoError(t, err)
	assert.False(t, done)

	// A canceled id can be scheduled again.
	require.NoError(t, q.Schedule(ctx, bop, common.Hash{}, testSalt, types.NewDuration(time.Hour)))

	// Done operations are not cancelable.
	clk.Advance(time.Hour)
	require.NoError(t, q.Execute(ctx, bop, common.Hash{}, testSalt, nil))
	require.ErrorAs(t, q.Cancel(ctx, opID), &notCancelable)
}

func Test_Queue_Execute_Dispatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	var gotCalls []types.Call
	var gotCaller common.Address
	dispatcher := sdk.CallDispatcherFunc(func(ctx context.Context, call types.Call) error {
		gotCalls = append(gotCalls, call)
		gotCaller, _ = sdk.CallerFrom(ctx)

		return nil
	})

	q, clk := newTestQueue(t, time.Hour, WithDispatcher(dispatcher))
	bop := types.BatchOperation{
		Calls: []types.Call{
			types.NewCall(targetAddr, []byte("a"), big.NewInt(5)),
			types.NewCall(otherAddr, []byte("b"), nil),
		},
	}

	require.NoError(t, q.Schedule(ctx, bop, common.Hash{}, testSalt, types.NewDuration(time.Hour)))
	clk.Advance(time.Hour)

	// Attached value below the batch total fails without dispatching.
	err := q.Execute(ctx, bop, common.Hash{}, testSalt, big.NewInt(4))
	require.ErrorContains(t, err, "does not cover batch total")
	assert.Empty(t, gotCalls)

	require.NoError(t, q.Execute(ctx, bop, common.Hash{}, testSalt, big.NewInt(5)))
	require.Len(t, gotCalls, 2)
	assert.Equal(t, targetAddr, gotCalls[0].Target)
	assert.Equal(t, queueAddr, gotCaller, "calls must observe the queue as the immediate caller")
}

func Test_Queue_Execute_FailingCallAbortsBatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	dispatched := 0
	dispatcher := sdk.CallDispatcherFunc(func(_ context.Context, call types.Call) error {
		dispatched++
		if call.Target == otherAddr {
			return errors.New("revert")
		}

		return nil
	})

	q, clk := newTestQueue(t, time.Hour, WithDispatcher(dispatcher))
	bop := types.BatchOperation{
		Calls: []types.Call{
			types.NewCall(targetAddr, []byte("a"), nil),
			types.NewCall(otherAddr, []byte("b"), nil),
			types.NewCall(targetAddr, []byte("c"), nil),
		},
	}

	opID, err := q.HashOperationBatch(bop, common.Hash{}, testSalt)
	require.NoError(t, err)

	require.NoError(t, q.Schedule(ctx, bop, common.Hash{}, testSalt, types.NewDuration(time.Hour)))
	clk.Advance(time.Hour)

	err = q.Execute(ctx, bop, common.Hash{}, testSalt, nil)
	require.ErrorContains(t, err, "call 1")
	assert.Equal(t, 2, dispatched, "the batch stops at the failing call")

	// The operation is not done and remains executable once the call succeeds.
	done, err := q.IsOperationDone(ctx, opID)
	require.NoError(t, err)
	assert.False(t, done)
	pending, err := q.IsOperationPending(ctx, opID)
	require.NoError(t, err)
	assert.True(t, pending)
}

func Test_Queue_Execute_Predecessor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q, clk := newTestQueue(t, time.Hour)

	first := testBatch("first")
	firstID, err := q.HashOperationBatch(first, common.Hash{}, testSalt)
	require.NoError(t, err)
	second := testBatch("second")

	require.NoError(t, q.Schedule(ctx, first, common.Hash{}, testSalt, types.NewDuration(time.Hour)))
	require.NoError(t, q.Schedule(ctx, second, firstID, testSalt, types.NewDuration(time.Hour)))
	clk.Advance(time.Hour)

	err = q.Execute(ctx, second, firstID, testSalt, nil)
	require.ErrorContains(t, err, "predecessor")

	require.NoError(t, q.Execute(ctx, first, common.Hash{}, testSalt, nil))
	require.NoError(t, q.Execute(ctx, second, firstID, testSalt, nil))
}

func Test_Queue_Roles(t *testing.T) {
	t.Parallel()

	proposer := common.HexToAddress("0xaaaa000000000000000000000000000000000001")
	executor := common.HexToAddress("0xaaaa000000000000000000000000000000000002")
	canceller := common.HexToAddress("0xaaaa000000000000000000000000000000000003")

	roles := NewRoles().
		Grant(RoleProposer, proposer).
		Grant(RoleExecutor, executor).
		Grant(RoleCanceller, canceller)

	q, clk := newTestQueue(t, time.Hour, WithRoles(roles))
	bop := testBatch("data")
	opID, err := q.HashOperationBatch(bop, common.Hash{}, testSalt)
	require.NoError(t, err)

	// No caller in context.
	var unauthorized *sdkerrors.UnauthorizedCallerError
	err = q.Schedule(context.Background(), bop, common.Hash{}, testSalt, types.NewDuration(time.Hour))
	require.ErrorAs(t, err, &unauthorized)

	// Wrong role.
	err = q.Schedule(sdk.WithCaller(context.Background(), executor), bop, common.Hash{}, testSalt, types.NewDuration(time.Hour))
	require.ErrorAs(t, err, &unauthorized)

	require.NoError(t, q.Schedule(
		sdk.WithCaller(context.Background(), proposer), bop, common.Hash{}, testSalt, types.NewDuration(time.Hour),
	))
	clk.Advance(time.Hour)

	err = q.Execute(sdk.WithCaller(context.Background(), proposer), bop, common.Hash{}, testSalt, nil)
	require.ErrorAs(t, err, &unauthorized)
	require.NoError(t, q.Execute(sdk.WithCaller(context.Background(), executor), bop, common.Hash{}, testSalt, nil))

	err = q.Cancel(sdk.WithCaller(context.Background(), executor), opID)
	require.ErrorAs(t, err, &unauthorized)

	assert.Equal(t, []common.Address{proposer}, q.Proposers())
	assert.Equal(t, []common.Address{executor}, q.Executors())
	assert.Equal(t, []common.Address{canceller}, q.Cancellers())
}

func Test_Queue_MinDelay(t *testing.T) {
	t.Parallel()

	q, _ := newTestQueue(t, 42*time.Minute)

	got, err := q.MinDelay(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.NewDuration(42*time.Minute), got)
}

func Test_Queue_ZeroOpID_NeverPendingNorDone(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q, _ := newTestQueue(t, time.Hour)

	for i := range 3 {
		require.NoError(t, q.Schedule(
			ctx, testBatch(fmt.Sprintf("op-%d", i)), common.Hash{}, testSalt, types.NewDuration(time.Hour),
		))
	}

	pending, err := q.IsOperationPending(ctx, common.Hash{})
	require.NoError(t, err)
	assert.False(t, pending)
	done, err := q.IsOperationDone(ctx, common.Hash{})
	require.NoError(t, err)
	assert.False(t, done)
}
