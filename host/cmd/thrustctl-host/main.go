package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang/glog"

	"thrustctl/config"
	"thrustctl/host/serial"
	"thrustctl/host/vehicle"
)

var (
	device     = flag.String("device", "", "Serial device path (default from config)")
	baud       = flag.Int("baud", 0, "Baud rate (default from config)")
	configPath = flag.String("config", "", "Vehicle configuration JSON")
	readyWait  = flag.Duration("ready-timeout", 5*time.Second, "How long to wait for the vehicle to boot")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	portCfg := serial.FromVehicleConfig(*device, cfg)
	if *baud != 0 {
		portCfg.Baud = *baud
	}

	v := vehicle.New(cfg)
	fmt.Printf("Connecting to vehicle on %s...\n", portCfg.Device)
	if err := v.ConnectWithConfig(portCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer v.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *readyWait)
	err := v.WaitReady(ctx)
	cancel()
	if err != nil {
		// The vehicle may have booted before we opened the port
		glog.Warningf("no Ready from vehicle: %v", err)
	} else {
		fmt.Println("Vehicle ready.")
	}

	sh := newShell(v)
	sh.Run(flag.Args()...)
}
