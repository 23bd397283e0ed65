//go:build rp2040

package main

import (
	"machine"

	"tinygo.org/x/drivers/adxl345"

	"thrustctl/core"
)

// imuSensors feeds SensorStream from an ADXL345 accelerometer on I2C0
// (SDA=GP4, SCL=GP5)
type imuSensors struct {
	accel adxl345.Device
}

func newIMUSensors(bus *machine.I2C) (*imuSensors, error) {
	err := bus.Configure(machine.I2CConfig{Frequency: 400000})
	if err != nil {
		return nil, err
	}

	s := &imuSensors{accel: adxl345.New(bus)}
	s.accel.Configure()
	s.accel.SetRate(adxl345.RATE_100HZ)
	s.accel.SetRange(adxl345.RANGE_4G)
	return s, nil
}

// ReadSensors writes one raw accelerometer sample
func (s *imuSensors) ReadSensors(buf []byte) (int, error) {
	if len(buf) < core.AccelSampleSize {
		return 0, core.ErrSensorBuffer
	}
	x, y, z := s.accel.ReadRawAcceleration()
	return core.PutAccelSample(buf, int16(x), int16(y), int16(z))
}
