package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-zeromq/zmq4"
	"github.com/google/uuid"
	json "github.com/json-iterator/go"
)

// Wire types of the kvstore ZMQ API
type ApiRequest struct {
	Action string `json:"action,omitempty"`
	Key    string `json:"key,omitempty"`
	Value  string `json:"value,omitempty"`
}

type ApiResponse struct {
	Entry struct {
		Key   string `json:"key,omitempty"`
		Value string `json:"value"`
	} `json:"entry"`
	Success   bool   `json:"success"`
	Found     bool   `json:"found,omitempty"`
	RequestId string `json:"request_id"`
	Error     string `json:"error,omitempty"`
}

var errTimeout = errors.New("request timeout")

// Each worker owns its keys, so it always knows the last value the server
// acknowledged for them. Every GET is checked against that value: an OK
// reply must be visible to the next read.
type keyOwner struct {
	prefix   string
	keySpace int
	acked    []string
	written  []bool
}

func newKeyOwner(runId string, worker, keySpace int) *keyOwner {
	return &keyOwner{
		prefix:   fmt.Sprintf("bench-%s-w%d-", runId, worker),
		keySpace: keySpace,
		acked:    make([]string, keySpace),
		written:  make([]bool, keySpace),
	}
}

func (o *keyOwner) key(n int) string {
	return o.prefix + fmt.Sprint(n)
}

// check returns a description of the mismatch, or "" when resp agrees with
// the last acknowledged write of key n.
func (o *keyOwner) check(n int, resp ApiResponse) string {
	switch {
	case !o.written[n] && resp.Found:
		return fmt.Sprintf("%s: never written but found %q", o.key(n), resp.Entry.Value)
	case o.written[n] && !resp.Found:
		return fmt.Sprintf("%s: acknowledged %q but not found", o.key(n), o.acked[n])
	case o.written[n] && resp.Entry.Value != o.acked[n]:
		return fmt.Sprintf("%s: acknowledged %q but read %q", o.key(n), o.acked[n], resp.Entry.Value)
	}
	return ""
}

type results struct {
	sets, gets, failures, timeouts, violations atomic.Int64

	mu        sync.Mutex
	latencies []time.Duration
	samples   []string
}

func (r *results) observe(d time.Duration) {
	r.mu.Lock()
	r.latencies = append(r.latencies, d)
	r.mu.Unlock()
}

func (r *results) violation(desc string) {
	r.violations.Add(1)
	r.mu.Lock()
	if len(r.samples) < 10 {
		r.samples = append(r.samples, desc)
	}
	r.mu.Unlock()
}

type client struct {
	socket  zmq4.Socket
	timeout time.Duration
}

func dial(address string, timeout time.Duration) (*client, error) {
	socket := zmq4.NewReq(context.Background())
	if err := socket.Dial(address); err != nil {
		return nil, fmt.Errorf("dial %s: %w", address, err)
	}
	return &client{socket: socket, timeout: timeout}, nil
}

func (c *client) do(req ApiRequest) (ApiResponse, error) {
	var resp ApiResponse
	payload, err := json.Marshal(req)
	if err != nil {
		return resp, err
	}
	if err := c.socket.Send(zmq4.NewMsg(payload)); err != nil {
		return resp, err
	}

	type reply struct {
		msg zmq4.Msg
		err error
	}
	ch := make(chan reply, 1)
	go func() {
		msg, err := c.socket.Recv()
		ch <- reply{msg, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return resp, r.err
		}
		err = json.Unmarshal(r.msg.Bytes(), &resp)
		return resp, err
	case <-time.After(c.timeout):
		return resp, errTimeout
	}
}

// run mixes SETs and GETs on the worker's own keys until deadline, then
// reads every written key once more.
func run(c *client, owner *keyOwner, writeRatio float64, deadline time.Time, res *results) error {
	get := func(n int) error {
		start := time.Now()
		resp, err := c.do(ApiRequest{Action: "GET", Key: owner.key(n)})
		res.observe(time.Since(start))
		res.gets.Add(1)
		if err != nil {
			return err
		}
		if !resp.Success {
			res.failures.Add(1)
			return nil
		}
		if desc := owner.check(n, resp); desc != "" {
			res.violation(desc)
		}
		return nil
	}

	for time.Now().Before(deadline) {
		n := rand.Intn(owner.keySpace)
		if rand.Float64() >= writeRatio {
			if err := get(n); err != nil {
				return err
			}
			continue
		}

		value := uuid.NewString()
		start := time.Now()
		resp, err := c.do(ApiRequest{Action: "SET", Key: owner.key(n), Value: value})
		res.observe(time.Since(start))
		res.sets.Add(1)
		if err != nil {
			return err
		}
		if !resp.Success {
			// not acknowledged, so the previous value is still the expected one
			res.failures.Add(1)
			continue
		}
		owner.acked[n], owner.written[n] = value, true
	}

	for n := 0; n < owner.keySpace; n++ {
		if err := get(n); err != nil {
			return err
		}
	}
	return nil
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[int(float64(len(sorted)-1)*p)]
}

func main() {
	var (
		address    = flag.String("address", "tcp://localhost:5555", "kvstore ZMQ API address")
		workers    = flag.Int("workers", 8, "concurrent clients")
		keySpace   = flag.Int("keys", 200, "keys owned by each client")
		writeRatio = flag.Float64("writes", 0.5, "fraction of requests that are SETs")
		duration   = flag.Duration("duration", 30*time.Second, "test duration")
		timeout    = flag.Duration("timeout", 5*time.Second, "per-request timeout")
	)
	flag.Parse()

	runId := uuid.NewString()[:8]
	log.Printf("run %s: %d workers x %d keys for %v against %s", runId, *workers, *keySpace, *duration, *address)

	res := &results{}
	deadline := time.Now().Add(*duration)
	started := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			c, err := dial(*address, *timeout)
			if err != nil {
				log.Printf("worker %d: %v", id, err)
				return
			}
			defer c.socket.Close()

			// a REQ socket cannot be reused after a lost reply
			if err := run(c, newKeyOwner(runId, id, *keySpace), *writeRatio, deadline, res); err != nil {
				if errors.Is(err, errTimeout) {
					res.timeouts.Add(1)
				}
				log.Printf("worker %d stopped: %v", id, err)
			}
		}(i)
	}
	wg.Wait()
	elapsed := time.Since(started)

	sort.Slice(res.latencies, func(i, j int) bool { return res.latencies[i] < res.latencies[j] })
	total := res.sets.Load() + res.gets.Load()
	fmt.Printf("requests: %d (SET %d, GET %d) in %v, %.0f req/s\n",
		total, res.sets.Load(), res.gets.Load(), elapsed.Round(time.Millisecond), float64(total)/elapsed.Seconds())
	fmt.Printf("latency: p50 %v  p99 %v  max %v\n",
		percentile(res.latencies, 0.50), percentile(res.latencies, 0.99), percentile(res.latencies, 1))
	fmt.Printf("failed replies: %d  timeouts: %d\n", res.failures.Load(), res.timeouts.Load())
	fmt.Printf("read-your-writes violations: %d\n", res.violations.Load())
	for _, s := range res.samples {
		fmt.Println("  ", s)
	}

	if res.violations.Load() > 0 {
		os.Exit(1)
	}
}
