package actuator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/Lokesh983/Gesture-Control/internal/plugin"
)

// VolumeAction is the plugin action that sets the output volume.
const VolumeAction = "set-volume"

// Runner executes one plugin request.
type Runner interface {
	Execute(ctx context.Context, p *plugin.Plugin, req *plugin.Request) (*plugin.Response, error)
}

// PluginVolume forwards volume levels to a plugin on a worker goroutine.
// Only the most recent pending level is kept, so SetVolume never blocks.
type PluginVolume struct {
	runner Runner
	plugin *plugin.Plugin

	pending chan float64
	done    chan struct{}
	wg      sync.WaitGroup

	mu      sync.Mutex
	applied int
	closed  bool
}

// NewPluginVolume finds the plugin handling VolumeAction and starts the
// worker.
func NewPluginVolume(mgr *plugin.Manager, runner Runner) (*PluginVolume, error) {
	p, err := mgr.ForAction(VolumeAction)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	v := &PluginVolume{
		runner:  runner,
		plugin:  p,
		pending: make(chan float64, 1),
		done:    make(chan struct{}),
		applied: -1,
	}
	v.wg.Add(1)
	go v.run()
	return v, nil
}

// SetVolume queues level, replacing any level not yet applied.
func (v *PluginVolume) SetVolume(level float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return errors.New("volume worker closed")
	}

	select {
	case <-v.pending:
	default:
	}
	v.pending <- level
	return nil
}

// Applied returns the last level the plugin accepted, or -1.
func (v *PluginVolume) Applied() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.applied
}

func (v *PluginVolume) run() {
	defer v.wg.Done()
	for {
		select {
		case <-v.done:
			return
		case level := <-v.pending:
			v.apply(level)
		}
	}
}

func (v *PluginVolume) apply(level float64) {
	rounded := int(math.Round(level))
	if rounded == v.Applied() {
		return
	}

	params, _ := json.Marshal(map[string]int{"level": rounded})
	resp, err := v.runner.Execute(context.Background(), v.plugin, &plugin.Request{
		Action: VolumeAction,
		Mode:   "volume",
		Params: params,
	})
	if err != nil {
		log.Printf("volume %d: %v", rounded, err)
		return
	}
	if !resp.Success {
		log.Printf("volume %d refused: %s", rounded, resp.Error)
		return
	}

	v.mu.Lock()
	v.applied = rounded
	v.mu.Unlock()
}

// Close stops the worker. Pending levels are dropped.
func (v *PluginVolume) Close() error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	v.closed = true
	v.mu.Unlock()

	close(v.done)
	v.wg.Wait()
	return nil
}
