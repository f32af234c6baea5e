package activity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftworks/timeclock/activity"
	"github.com/shiftworks/timeclock/clock"
)

func notification(employeeID string, at time.Time) clock.Notification {
	return clock.Notification{
		Kind:         clock.KindClockedIn,
		EmployeeID:   employeeID,
		EmployeeName: "Employee " + employeeID,
		Time:         at,
	}
}

func TestFeedNewestFirst(t *testing.T) {
	feed := activity.NewFeed()
	at := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

	feed.Notify(notification("emp1", at))
	feed.Notify(notification("emp2", at.Add(time.Minute)))

	recent := feed.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, "emp2", recent[0].EmployeeID)
	assert.Equal(t, "emp1", recent[1].EmployeeID)
}

func TestFeedCapsAtTen(t *testing.T) {
	feed := activity.NewFeed()
	at := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 15; i++ {
		feed.Notify(notification(string(rune('a'+i)), at.Add(time.Duration(i)*time.Minute)))
	}

	recent := feed.Recent()
	require.Len(t, recent, 10)
	// Newest survives, oldest five are evicted.
	assert.Equal(t, "o", recent[0].EmployeeID)
	assert.Equal(t, "f", recent[9].EmployeeID)
}

func TestFeedSubscribe(t *testing.T) {
	feed := activity.NewFeed()
	at := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

	ch, cancel := feed.Subscribe()
	defer cancel()

	feed.Notify(notification("emp1", at))

	select {
	case n := <-ch:
		assert.Equal(t, "emp1", n.EmployeeID)
	case <-time.After(time.Second):
		t.Fatal("no notification delivered")
	}
}

func TestFeedCancelStopsDelivery(t *testing.T) {
	feed := activity.NewFeed()
	at := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

	ch, cancel := feed.Subscribe()
	cancel()

	feed.Notify(notification("emp1", at))

	select {
	case <-ch:
		t.Fatal("cancelled subscriber still receiving")
	default:
	}
}

func TestFeedSlowSubscriberSkipped(t *testing.T) {
	feed := activity.NewFeed()
	at := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

	ch, cancel := feed.Subscribe()
	defer cancel()

	// Overflow the subscriber buffer; Notify must never block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			feed.Notify(notification("emp1", at))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Notify blocked on a slow subscriber")
	}
	assert.Len(t, feed.Recent(), 10)
	assert.NotEmpty(t, ch)
}

func TestMulti(t *testing.T) {
	var a, b int
	multi := activity.Multi(
		clock.NotifierFunc(func(clock.Notification) { a++ }),
		nil,
		clock.NotifierFunc(func(clock.Notification) { b++ }),
	)

	multi.Notify(clock.Notification{Kind: clock.KindClockedIn})
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
}
