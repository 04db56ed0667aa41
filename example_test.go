package scicam_test

import (
	"fmt"
	"time"

	"github.com/visiona/scicam"
	"github.com/visiona/scicam/sim"
)

func ExampleOpen() {
	drv, _ := sim.New(sim.Config{Devices: 2})

	n, _ := scicam.DeviceCount(drv)
	cam, _ := scicam.Open(drv, 0)
	defer cam.Close()

	name, _ := cam.DeviceName()
	fmt.Println(n, name)
	// Output: 2 SIMCAM-1300
}

func ExampleCamera_SetRoi() {
	drv, _ := sim.New(sim.Config{})
	cam, _ := scicam.Open(drv, 0)
	defer cam.Close()

	// requested geometry is rounded onto the sensor's increment grid
	actual, _ := cam.SetRoi(scicam.Roi{OffsetX: 100, OffsetY: 50, Width: 637, Height: 481})
	fmt.Printf("%dx%d+%d+%d\n", actual.Width, actual.Height, actual.OffsetX, actual.OffsetY)
	// Output: 624x480+96+50
}

func ExampleViewOf() {
	drv, _ := sim.New(sim.Config{})
	cam, _ := scicam.Open(drv, 0)
	acq, _ := cam.StartAcquisition()
	defer acq.Close()

	frame, _ := acq.NextFrame(time.Second)
	v := scicam.ViewOf[uint8](frame)

	a, _ := v.At(0, 0)
	b, _ := v.At(2, 3)
	fmt.Println(a, b)
	// Output: 1 6
}
