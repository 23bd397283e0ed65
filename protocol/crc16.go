package protocol

import "github.com/sigurn/crc16"

// crcTable is CRC-16/MCRF4XX: the Klipper/Anchor CRC16 (poly 0x1021 reflected,
// init 0xFFFF, no final xor), table-driven.
var crcTable = crc16.MakeTable(crc16.CRC16_MCRF4XX)

// Checksum calculates the CRC16 of data
func Checksum(data []byte) uint16 {
	return crc16.Checksum(data, crcTable)
}

// CRCInit returns the initial value for a streaming checksum
func CRCInit() uint16 {
	return crc16.Init(crcTable)
}

// CRCUpdate folds data into a running checksum
func CRCUpdate(crc uint16, data []byte) uint16 {
	return crc16.Update(crc, data, crcTable)
}

// CRCComplete finalizes a running checksum
func CRCComplete(crc uint16) uint16 {
	return crc16.Complete(crc, crcTable)
}
