package bus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracker-agent/internal/app/apperrors"
	"tracker-agent/internal/config/logger"
)

func newTestBus() Bus {
	return New(logger.NoopLogger{})
}

func Test_Publish_DeliversToAllSubscribers(t *testing.T) {
	b := newTestBus()
	defer b.Close()

	s1 := NewSubscriber("s1", 4)
	s2 := NewSubscriber("s2", 4)
	b.Subscribe(s1, ChanButton)
	b.Subscribe(s2, ChanButton)

	require.NoError(t, b.Publish(ChanButton, MsgButtonPressShort, nil, time.Second))

	m1, err := b.Wait(s1, time.Second)
	require.NoError(t, err)
	assert.Equal(t, MsgButtonPressShort, m1.Type)

	m2, err := b.Wait(s2, time.Second)
	require.NoError(t, err)
	assert.Equal(t, MsgButtonPressShort, m2.Type)
}

func Test_Publish_OrderingPreservedPerSubscriber(t *testing.T) {
	b := newTestBus()
	defer b.Close()

	s := NewSubscriber("s", 8)
	b.Subscribe(s, ChanTimer)

	require.NoError(t, b.Publish(ChanTimer, MsgTimerExpiredCloud, 1, time.Second))
	require.NoError(t, b.Publish(ChanTimer, MsgTimerExpiredSampleData, 2, time.Second))

	m1, _ := b.Wait(s, time.Second)
	m2, _ := b.Wait(s, time.Second)

	assert.Equal(t, 1, m1.Data)
	assert.Equal(t, 2, m2.Data)
}

func Test_Wait_TimesOutWithNoMessage(t *testing.T) {
	b := newTestBus()
	defer b.Close()

	s := NewSubscriber("s", 1)
	b.Subscribe(s, ChanButton)

	_, err := b.Wait(s, 20*time.Millisecond)
	assert.ErrorIs(t, err, apperrors.ErrNoMessage)
}

func Test_Publish_QueueFull_IsPartialDeliveryError(t *testing.T) {
	b := newTestBus()
	defer b.Close()

	full := NewSubscriber("full", 1)
	ok := NewSubscriber("ok", 1)
	b.Subscribe(full, ChanButton)
	b.Subscribe(ok, ChanButton)

	// Fill "full"'s queue so the next publish can't be delivered to it.
	require.NoError(t, b.Publish(ChanButton, MsgButtonPressShort, nil, time.Second))
	_, err := b.Wait(ok, time.Second) // drain "ok" but not "full"
	require.NoError(t, err)

	err = b.Publish(ChanButton, MsgButtonPressLong, nil, time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrQueueFull)

	// "ok" still received the second publish despite "full"'s failure.
	m, err := b.Wait(ok, time.Second)
	require.NoError(t, err)
	assert.Equal(t, MsgButtonPressLong, m.Type)
}

func Test_Subscribe_IsIdempotent(t *testing.T) {
	b := newTestBus()
	defer b.Close()

	s := NewSubscriber("s", 2)
	b.Subscribe(s, ChanButton)
	b.Subscribe(s, ChanButton) // second attach must not double-deliver

	require.NoError(t, b.Publish(ChanButton, MsgButtonPressShort, nil, time.Second))

	_, err := b.Wait(s, 50*time.Millisecond)
	require.NoError(t, err)

	_, err = b.Wait(s, 20*time.Millisecond)
	assert.ErrorIs(t, err, apperrors.ErrNoMessage)
}

func Test_Wait_SetsLastChannel(t *testing.T) {
	b := newTestBus()
	defer b.Close()

	s := NewSubscriber("s", 4)
	b.Subscribe(s, ChanButton, ChanTimer)

	require.NoError(t, b.Publish(ChanTimer, MsgTimerExpiredCloud, nil, time.Second))
	_, err := b.Wait(s, time.Second)
	require.NoError(t, err)
	assert.Equal(t, ChanTimer, s.LastChannel())
}

func Test_Close_ClosesSubscriberQueues(t *testing.T) {
	b := newTestBus()

	s := NewSubscriber("s", 2)
	b.Subscribe(s, ChanButton)

	b.Close()

	_, err := b.Wait(s, 50*time.Millisecond)
	assert.ErrorIs(t, err, apperrors.ErrBusClosed)
}

func Test_Publish_AfterClose_ReturnsBusClosed(t *testing.T) {
	b := newTestBus()
	b.Close()

	err := b.Publish(ChanButton, MsgButtonPressShort, nil, time.Second)
	assert.ErrorIs(t, err, apperrors.ErrBusClosed)
}

func Test_CrossChannel_Subscriber_ReceivesFromEither(t *testing.T) {
	b := newTestBus()
	defer b.Close()

	s := NewSubscriber("multi", 4)
	b.Subscribe(s, ChanCloud, ChanNetwork)

	require.NoError(t, b.Publish(ChanCloud, MsgCloudConnected, nil, time.Second))
	require.NoError(t, b.Publish(ChanNetwork, MsgNetworkDisconnected, nil, time.Second))

	first, _ := b.Wait(s, time.Second)
	second, _ := b.Wait(s, time.Second)

	assert.ElementsMatch(t, []Channel{ChanCloud, ChanNetwork}, []Channel{first.Channel, second.Channel})
}
