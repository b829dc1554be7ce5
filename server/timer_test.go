package server

import (
	"testing"
	"time"

	. "gopkg.in/check.v1"
)

func Test(t *testing.T) { TestingT(t) }

type DelayerSuite struct{}

var _ = Suite(&DelayerSuite{})

func (s *DelayerSuite) TestDelayedFunctionFires(c *C) {
	delayer := NewFunctionDelayer(25 * time.Millisecond)
	fired := make(chan time.Time, 1)
	start := time.Now()

	delayer.Delay("abc", func() { fired <- time.Now() })

	select {
	case at := <-fired:
		c.Assert(at.Sub(start) >= 25*time.Millisecond, Equals, true)
	case <-time.After(time.Second):
		c.Fatal("delayed function never fired")
	}
}

func (s *DelayerSuite) TestSameKeyReplacesFunction(c *C) {
	delayer := NewFunctionDelayer(25 * time.Millisecond)
	first := make(chan bool, 1)
	second := make(chan bool, 1)

	delayer.Delay("abc", func() { first <- true })
	delayer.Delay("abc", func() { second <- true })

	select {
	case <-second:
	case <-time.After(time.Second):
		c.Fatal("replacement function never fired")
	}
	select {
	case <-first:
		c.Fatal("replaced function should not fire")
	case <-time.After(100 * time.Millisecond):
	}
}

func (s *DelayerSuite) TestDifferentKeysAreIndependent(c *C) {
	delayer := NewFunctionDelayer(25 * time.Millisecond)
	fired := make(chan string, 2)

	delayer.Delay("abc", func() { fired <- "abc" })
	delayer.Delay("def", func() { fired <- "def" })

	results := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case key := <-fired:
			results[key] = true
		case <-time.After(time.Second):
			c.Fatal("delayed function never fired")
		}
	}
	c.Assert(results["abc"], Equals, true)
	c.Assert(results["def"], Equals, true)
}
