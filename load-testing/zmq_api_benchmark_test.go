package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func found(value string) ApiResponse {
	var resp ApiResponse
	resp.Success, resp.Found = true, true
	resp.Entry.Value = value
	return resp
}

func TestKeyOwner_Keys(t *testing.T) {
	a := newKeyOwner("run1", 0, 4)
	b := newKeyOwner("run1", 1, 4)

	assert.Equal(t, "bench-run1-w0-3", a.key(3))
	assert.NotEqual(t, a.key(0), b.key(0))
}

func TestKeyOwner_Check(t *testing.T) {
	o := newKeyOwner("run1", 0, 2)

	assert.Empty(t, o.check(0, ApiResponse{Success: true}))
	assert.Contains(t, o.check(0, found("ghost")), "never written")

	o.acked[1], o.written[1] = "v2", true
	assert.Empty(t, o.check(1, found("v2")))
	assert.Contains(t, o.check(1, found("v1")), `read "v1"`)
	assert.Contains(t, o.check(1, ApiResponse{Success: true}), "not found")
}

func TestKeyOwner_EmptyValueIsAcknowledged(t *testing.T) {
	o := newKeyOwner("run1", 0, 1)
	o.acked[0], o.written[0] = "", true

	assert.Empty(t, o.check(0, found("")))
	assert.NotEmpty(t, o.check(0, ApiResponse{Success: true}))
}

func TestPercentile(t *testing.T) {
	assert.Zero(t, percentile(nil, 0.5))

	var sorted []time.Duration
	for i := 1; i <= 100; i++ {
		sorted = append(sorted, time.Duration(i)*time.Millisecond)
	}
	assert.Equal(t, 50*time.Millisecond, percentile(sorted, 0.50))
	assert.Equal(t, 99*time.Millisecond, percentile(sorted, 0.99))
	assert.Equal(t, 100*time.Millisecond, percentile(sorted, 1))
}
