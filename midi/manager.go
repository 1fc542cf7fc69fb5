package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"gridseq/debug"
)

// portTimeout bounds a port scan; CoreMIDI can hang.
const portTimeout = 3 * time.Second

// DeviceManager handles hot-plug of Launchpads and mirrors the panel on
// each one connected.
type DeviceManager struct {
	panel Panel
	match string

	controllers map[string]*device
	mu          sync.RWMutex
	pollRate    time.Duration
}

type device struct {
	ctrl   Controller
	cancel context.CancelFunc
}

// NewDeviceManager mirrors panel on Launchpads whose port name contains
// match (any Launchpad when empty).
func NewDeviceManager(panel Panel, match string) *DeviceManager {
	return &DeviceManager{
		panel:       panel,
		match:       strings.ToLower(match),
		controllers: make(map[string]*device),
		pollRate:    time.Second,
	}
}

// Connected lists the IDs of connected controllers.
func (dm *DeviceManager) Connected() []string {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	ids := make([]string, 0, len(dm.controllers))
	for id := range dm.controllers {
		ids = append(ids, id)
	}
	return ids
}

// Run polls for devices until ctx is done (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	dm.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			return
		case <-ticker.C:
			dm.scan(ctx)
		}
	}
}

func (dm *DeviceManager) scan(ctx context.Context) {
	inPorts, outPorts, err := ports()
	if err != nil {
		debug.LogEvery(30, "midi", "scan: %v", err)
		return
	}

	seenIDs := make(map[string]bool)

	for _, inPort := range inPorts {
		name := strings.ToLower(inPort.String())
		if !isLaunchpad(name, dm.match) {
			continue
		}
		id := inPort.String()
		seenIDs[id] = true

		dm.mu.RLock()
		_, exists := dm.controllers[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		var outPort drivers.Out
		for _, op := range outPorts {
			if strings.ToLower(op.String()) == name {
				outPort = op
				break
			}
		}

		lp, err := NewLaunchpadController(id, inPort, outPort)
		if err != nil {
			debug.Warn("midi", "launchpad %s: %v", id, err)
			continue
		}
		dm.connect(ctx, id, lp)
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()
	for id, d := range dm.controllers {
		if !seenIDs[id] {
			d.cancel()
			d.ctrl.Close()
			delete(dm.controllers, id)
			debug.Log("midi", "launchpad disconnected: %s", id)
		}
	}
}

func (dm *DeviceManager) connect(ctx context.Context, id string, ctrl Controller) {
	ctx, cancel := context.WithCancel(ctx)
	dm.mu.Lock()
	dm.controllers[id] = &device{ctrl: ctrl, cancel: cancel}
	dm.mu.Unlock()

	go NewMirror(dm.panel, ctrl).Run(ctx)
	debug.Log("midi", "launchpad connected: %s", id)
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for id, d := range dm.controllers {
		d.cancel()
		d.ctrl.Close()
		delete(dm.controllers, id)
	}
}

// isLaunchpad matches a lower-cased port name.
func isLaunchpad(name, match string) bool {
	if match != "" {
		return strings.Contains(name, match)
	}
	return strings.Contains(name, "launchpad") && strings.Contains(name, "midi")
}

// OpenLaunchpad opens the first Launchpad whose port name contains match
// (any Launchpad when empty).
func OpenLaunchpad(match string) (*LaunchpadController, error) {
	inPorts, outPorts, err := ports()
	if err != nil {
		return nil, err
	}
	match = strings.ToLower(match)
	for _, in := range inPorts {
		name := strings.ToLower(in.String())
		if !isLaunchpad(name, match) {
			continue
		}
		var out drivers.Out
		for _, op := range outPorts {
			if strings.ToLower(op.String()) == name {
				out = op
				break
			}
		}
		return NewLaunchpadController(in.String(), in, out)
	}
	return nil, errors.Errorf("no Launchpad matching %q", match)
}

// Ports lists the MIDI input and output port names.
func Ports() (ins, outs []string, err error) {
	inPorts, outPorts, err := ports()
	if err != nil {
		return nil, nil, err
	}
	for _, p := range inPorts {
		ins = append(ins, p.String())
	}
	for _, p := range outPorts {
		outs = append(outs, p.String())
	}
	return ins, outs, nil
}

// FindInPort returns the first input port whose name contains name,
// ignoring case.
func FindInPort(name string) (drivers.In, error) {
	inPorts, _, err := ports()
	if err != nil {
		return nil, err
	}
	want := strings.ToLower(name)
	for _, p := range inPorts {
		if strings.Contains(strings.ToLower(p.String()), want) {
			return p, nil
		}
	}
	return nil, errors.Errorf("no MIDI input port matching %q", name)
}

// ports gets the current MIDI ports with a timeout.
func ports() ([]drivers.In, []drivers.Out, error) {
	type portsResult struct {
		inPorts  []drivers.In
		outPorts []drivers.Out
	}

	ch := make(chan portsResult, 1)
	go func() {
		ch <- portsResult{inPorts: gomidi.GetInPorts(), outPorts: gomidi.GetOutPorts()}
	}()

	select {
	case result := <-ch:
		return result.inPorts, result.outPorts, nil
	case <-time.After(portTimeout):
		// User needs to run: sudo killall coreaudiod midiserver
		return nil, nil, errors.New("MIDI port scan timed out")
	}
}
