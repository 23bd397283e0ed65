package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"thrustctl/core"
	"thrustctl/host/vehicle"
	"thrustctl/protocol"
)

const (
	shellKey     = "$shell"
	remotePrompt = "[remote] > "
	localPrompt  = "[local] > "
)

// Shell is the interactive vehicle console
type Shell struct {
	Shell   *ishell.Shell
	Vehicle *vehicle.Vehicle

	mu         sync.Mutex
	lastSensor []byte
	faults     int
}

var commands = []*ishell.Cmd{
	&DriveCmd,
	&MixCmd,
	&StopCmd,
	&HeartbeatCmd,
	&KeepAliveCmd,
	&SensorsCmd,
	&StatsCmd,
}

func newShell(v *vehicle.Vehicle) *Shell {
	s := &Shell{
		Shell:   ishell.New(),
		Vehicle: v,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(localPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// Run executes args as a single command, or starts the interactive shell
func (s *Shell) Run(args ...string) {
	go s.watch()
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			glog.Errorf("%v", err)
		}
		return
	}
	s.Shell.Run()
}

// watch prints vehicle log text and faults as they arrive
func (s *Shell) watch() {
	for msg := range s.Vehicle.Messages() {
		switch m := msg.(type) {
		case protocol.LogText:
			s.Shell.Println("vehicle: " + m.Text)
		case protocol.FaultNotice:
			s.mu.Lock()
			s.faults++
			s.mu.Unlock()
			s.Shell.Println("vehicle FAULT")
		case protocol.SensorStream:
			s.mu.Lock()
			s.lastSensor = m.Data
			s.mu.Unlock()
		case protocol.Ready:
			s.Shell.Println("vehicle rebooted")
		}
	}
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

func (s *Shell) drive(c *ishell.Context, cmd protocol.ActuatorCommand) {
	if err := s.Vehicle.Drive(context.Background(), cmd); err != nil {
		c.Err(err)
		return
	}
	s.Shell.SetPrompt(remotePrompt)
}

func parseAxes(args []string) ([4]float32, error) {
	var axes [4]float32
	if len(args) != 4 {
		return axes, fmt.Errorf("4 values required, got %d", len(args))
	}
	for i, arg := range args {
		val, err := strconv.ParseFloat(arg, 32)
		if err != nil {
			return axes, fmt.Errorf("invalid value %q: %v", arg, err)
		}
		axes[i] = float32(val)
	}
	return axes, nil
}

var (
	// DriveCmd sends a raw actuator command
	DriveCmd = ishell.Cmd{
		Name:    "drive",
		Aliases: []string{"d"},
		Help:    "FORWARD_LEFT FORWARD_RIGHT STRAFE VERTICAL (each -1..1)",
		Func: func(c *ishell.Context) {
			axes, err := parseAxes(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			ShellFrom(c).drive(c, protocol.ActuatorCommand{
				ForwardLeft:  axes[0],
				ForwardRight: axes[1],
				Strafe:       axes[2],
				Vertical:     axes[3],
			})
		},
	}

	// MixCmd sends stick positions through the joystick mixer
	MixCmd = ishell.Cmd{
		Name:    "mix",
		Aliases: []string{"m"},
		Help:    "LEFT_X LEFT_Y RIGHT_X RIGHT_Y (each -1..1)",
		Func: func(c *ishell.Context) {
			axes, err := parseAxes(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			cmd := core.Mix(axes[0], axes[1], axes[2], axes[3])
			c.Printf("FL=%.2f FR=%.2f strafe=%.2f vertical=%.2f\n",
				cmd.ForwardLeft, cmd.ForwardRight, cmd.Strafe, cmd.Vertical)
			ShellFrom(c).drive(c, cmd)
		},
	}

	// StopCmd zeroes all thrusters
	StopCmd = ishell.Cmd{
		Name:    "stop",
		Aliases: []string{"s"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).drive(c, protocol.ActuatorCommand{})
		},
	}

	// HeartbeatCmd sends one heartbeat
	HeartbeatCmd = ishell.Cmd{
		Name:    "heartbeat",
		Aliases: []string{"hb"},
		Help:    "",
		Func: func(c *ishell.Context) {
			if err := ShellFrom(c).Vehicle.Heartbeat(context.Background()); err != nil {
				c.Err(err)
			}
		},
	}

	// KeepAliveCmd toggles background heartbeats
	KeepAliveCmd = ishell.Cmd{
		Name:    "keepalive",
		Aliases: []string{"ka"},
		Help:    "on|off",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			if len(c.Args) != 1 {
				c.Println("keepalive running:", s.Vehicle.KeepAliveRunning())
				return
			}
			switch strings.ToLower(c.Args[0]) {
			case "on":
				if err := s.Vehicle.StartKeepAlive(); err != nil {
					c.Err(err)
				}
			case "off":
				s.Vehicle.StopKeepAlive()
				s.Shell.SetPrompt(localPrompt)
			default:
				c.Err(fmt.Errorf("expected on or off"))
			}
		},
	}

	// SensorsCmd prints the latest sensor sample
	SensorsCmd = ishell.Cmd{
		Name:    "sensors",
		Aliases: []string{"sn"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			s.mu.Lock()
			data := s.lastSensor
			s.mu.Unlock()
			if data == nil {
				c.Println("no sensor data received")
				return
			}
			c.Printf("% x\n", data)
		},
	}

	// StatsCmd prints link counters
	StatsCmd = ishell.Cmd{
		Name:    "stats",
		Aliases: []string{"st"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			stats := s.Vehicle.Stats()
			s.mu.Lock()
			faults := s.faults
			s.mu.Unlock()
			c.Printf("decode errors: %d\noverruns: %d\nfaults: %d\n",
				stats.DecodeErrors, stats.Overruns, faults)
		},
	}
)
