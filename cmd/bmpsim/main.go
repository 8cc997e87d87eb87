// Sensor simulator: writes "Temp:" and "Pres:" lines to a serial device the
// way the BMP280 firmware does. Use this for local testing without real
// hardware; with -virtual it creates a socat-backed PTY pair and the
// monitor reads the peer side.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bmpmon/internal/device"
	"bmpmon/internal/util"
)

func main() {
	util.SetupLogger()

	dev := flag.String("dev", "/tmp/ttyBMP1", "serial device to write sensor lines into")
	peer := flag.String("peer", "/tmp/ttyBMP0", "monitor-side device (with -virtual)")
	virtual := flag.Bool("virtual", false, "create a virtual serial pair with socat")
	baud := flag.Int("baud", 9600, "baud rate")
	interval := flag.Int("interval", 1000, "ms between readings")
	flag.Parse()

	if *virtual {
		sm := util.NewSocatManager()
		if err := sm.CreatePair(*peer, *dev); err != nil {
			log.Fatalf("create virtual pair: %v", err)
		}
		defer sm.Cleanup()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-stop
			sm.Cleanup()
			os.Exit(0)
		}()

		// give socat a moment to create the links
		time.Sleep(500 * time.Millisecond)
	}

	port, err := device.NewSerialDevice(*dev, *baud)
	if err != nil {
		log.Fatalf("open serial: %v", err)
	}
	defer func() {
		if cerr := port.Close(); cerr != nil {
			log.Printf("warning: close serial err: %v", cerr)
		}
	}()

	log.Printf("simulator sending to %s every %dms", *dev, *interval)
	tick := time.NewTicker(time.Duration(*interval) * time.Millisecond)
	defer tick.Stop()

	temp := 23.0
	press := 1002.0
	for range tick.C {
		temp += (rand.Float64() - 0.5) * 0.4
		press += (rand.Float64() - 0.5) * 1.2
		if err := port.WriteLine(fmt.Sprintf("Temp: %.2f", temp)); err != nil {
			log.Printf("write err: %v", err)
			continue
		}
		if err := port.WriteLine(fmt.Sprintf("Pres: %.2f", press)); err != nil {
			log.Printf("write err: %v", err)
			continue
		}
		log.Printf("sent: Temp=%.2f Pres=%.2f", temp, press)
	}
}
