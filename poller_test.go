package i2cm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// mockPort is a mock implementation of Port using testify/mock
type mockPort struct {
	mock.Mock
}

func (m *mockPort) Status() Status {
	args := m.Called()
	return args.Get(0).(Status)
}

func (m *mockPort) Start() {
	m.Called()
}

func (m *mockPort) Stop() {
	m.Called()
}

func (m *mockPort) SetAck(on bool) {
	m.Called(on)
}

func (m *mockPort) SetPos(on bool) {
	m.Called(on)
}

func (m *mockPort) ClearAckFailure() {
	m.Called()
}

func (m *mockPort) ClearAddrSent() {
	m.Called()
}

func (m *mockPort) WriteData(b byte) {
	m.Called(b)
}

func (m *mockPort) ReadData() byte {
	args := m.Called()
	return byte(args.Int(0))
}

func countingSleeper(sleeps *int) Sleeper {
	return SleeperFunc(func(ctx context.Context, d time.Duration) error {
		*sleeps++
		return nil
	})
}

func TestPoller_TimeoutAfterBudget(t *testing.T) {
	port := &mockPort{}
	port.On("Status").Return(Status(0))

	var sleeps int
	p := poller{limit: DefaultPollLimit, delay: DefaultPollDelay, sleep: countingSleeper(&sleeps)}

	err := p.wait(context.Background(), port, FlagTxEmpty, true)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, 100, sleeps)
	// one extra status read on the iteration that gives up
	port.AssertNumberOfCalls(t, "Status", 101)
}

func TestPoller_FlagAlreadySet(t *testing.T) {
	port := &mockPort{}
	port.On("Status").Return(Status(FlagTxEmpty))

	var sleeps int
	p := poller{limit: DefaultPollLimit, delay: DefaultPollDelay, sleep: countingSleeper(&sleeps)}

	err := p.wait(context.Background(), port, FlagTxEmpty, true)
	assert.NoError(t, err)
	assert.Zero(t, sleeps)
}

func TestPoller_NackDuringDataWait(t *testing.T) {
	tests := []struct {
		name string
		flag Flag
	}{
		{name: "transfer done", flag: FlagTransferDone},
		{name: "transmit empty", flag: FlagTxEmpty},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			port := &mockPort{}
			port.On("Status").Return(Status(FlagAckFailure))
			port.On("ClearAckFailure").Return()

			var sleeps int
			p := poller{limit: DefaultPollLimit, delay: DefaultPollDelay, sleep: countingSleeper(&sleeps)}

			err := p.wait(context.Background(), port, test.flag, true)
			assert.ErrorIs(t, err, ErrNack)
			assert.NotErrorIs(t, err, ErrTimeout)
			assert.Zero(t, sleeps)
			port.AssertNumberOfCalls(t, "ClearAckFailure", 1)
			port.AssertNotCalled(t, "Stop")
		})
	}
}

// An acknowledge failure landing on the same iteration the poll budget
// runs out must still classify as a NACK, not as a timeout.
func TestPoller_NackWinsOverTimeout(t *testing.T) {
	port := &mockPort{}
	port.On("Status").Return(Status(0)).Times(100)
	port.On("Status").Return(Status(FlagAckFailure))
	port.On("ClearAckFailure").Return()

	var sleeps int
	p := poller{limit: DefaultPollLimit, delay: DefaultPollDelay, sleep: countingSleeper(&sleeps)}

	err := p.wait(context.Background(), port, FlagTransferDone, true)
	assert.ErrorIs(t, err, ErrNack)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.Equal(t, 100, sleeps)
}

func TestPoller_AddressNackGeneratesStop(t *testing.T) {
	port := &mockPort{}
	port.On("Status").Return(Status(FlagAckFailure))
	port.On("Stop").Return()
	port.On("ClearAckFailure").Return()

	var sleeps int
	p := poller{limit: DefaultPollLimit, delay: DefaultPollDelay, sleep: countingSleeper(&sleeps)}

	err := p.wait(context.Background(), port, FlagAddrSent, true)
	assert.ErrorIs(t, err, ErrAddrNack)
	assert.Zero(t, sleeps)
	// stop goes out before the failure flag is cleared
	var order []string
	for _, call := range port.Calls {
		if call.Method == "Stop" || call.Method == "ClearAckFailure" {
			order = append(order, call.Method)
		}
	}
	assert.Equal(t, []string{"Stop", "ClearAckFailure"}, order)
}

// Waits on flags outside the classifier's scope ignore a latched
// acknowledge failure and run their full budget.
func TestPoller_NoClassificationOnOtherFlags(t *testing.T) {
	port := &mockPort{}
	port.On("Status").Return(Status(FlagAckFailure))

	var sleeps int
	p := poller{limit: 10, delay: DefaultPollDelay, sleep: countingSleeper(&sleeps)}

	err := p.wait(context.Background(), port, FlagRxReady, true)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, 10, sleeps)
	port.AssertNotCalled(t, "ClearAckFailure")
	port.AssertNotCalled(t, "Stop")
}

func TestPoller_ContextCancelled(t *testing.T) {
	port := &mockPort{}
	port.On("Status").Return(Status(0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := poller{limit: DefaultPollLimit, delay: time.Millisecond, sleep: timerSleeper{}}
	err := p.wait(ctx, port, FlagRxReady, true)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetag(t *testing.T) {
	assert.ErrorIs(t, retag(ErrTimeout, ErrAddrTimeout), ErrAddrTimeout)
	// classified errors pass through untouched
	assert.Equal(t, ErrNack, retag(ErrNack, ErrAddrTimeout))
	assert.Equal(t, ErrAddrNack, retag(ErrAddrNack, ErrAddrTimeout))
	// phase timeouts keep their generic identity
	for _, err := range []error{ErrBusyTimeout, ErrStartTimeout, ErrAddrTimeout, ErrTransferTimeout, ErrTxEmptyTimeout} {
		assert.ErrorIs(t, err, ErrTimeout)
	}
	assert.NotErrorIs(t, ErrNack, ErrTimeout)
	assert.NotErrorIs(t, ErrAddrNack, ErrTimeout)
}

func TestRetag_ContextErrorPassesThrough(t *testing.T) {
	assert.ErrorIs(t, retag(context.Canceled, ErrBusyTimeout), context.Canceled)
	assert.False(t, errors.Is(retag(context.Canceled, ErrBusyTimeout), ErrBusyTimeout))
}
