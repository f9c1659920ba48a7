package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMockClock_NowAndSince(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clk := NewMockClock(start)

	assert.Equal(t, start, clk.Now())
	clk.Advance(90 * time.Second)
	assert.Equal(t, 90*time.Second, clk.Since(start))
}

func TestMockClock_TickerFiresOnAdvance(t *testing.T) {
	clk := NewMockClock(time.Unix(0, 0))
	ticker := clk.NewTicker(time.Second)
	defer ticker.Stop()

	select {
	case <-ticker.C():
		t.Fatal("ticker fired before any time passed")
	default:
	}

	clk.Advance(time.Second)
	select {
	case <-ticker.C():
	default:
		t.Fatal("ticker did not fire after a full period")
	}
}

func TestMockClock_StoppedTickerStaysQuiet(t *testing.T) {
	clk := NewMockClock(time.Unix(0, 0))
	ticker := clk.NewTicker(time.Second)
	ticker.Stop()

	clk.Advance(5 * time.Second)
	select {
	case <-ticker.C():
		t.Fatal("stopped ticker fired")
	default:
	}
}

func TestMockTicker_Trigger(t *testing.T) {
	clk := NewMockClock(time.Unix(0, 0))
	ticker := clk.NewTicker(time.Hour).(*MockTicker)

	now := time.Unix(100, 0)
	ticker.Trigger(now)
	select {
	case got := <-ticker.C():
		assert.Equal(t, now, got)
	default:
		t.Fatal("triggered tick not delivered")
	}
}

func TestRealClock(t *testing.T) {
	clk := RealClock{}
	before := clk.Now()
	assert.LessOrEqual(t, clk.Since(before), time.Minute)

	ticker := clk.NewTicker(time.Millisecond)
	defer ticker.Stop()
	select {
	case <-ticker.C():
	case <-time.After(time.Second):
		t.Fatal("real ticker did not fire")
	}
}
