package modbusctrl

import (
	"math"

	"github.com/Agrid-Dev/heatload/internal/report"
)

// Input register layout. Every value is an unsigned 32-bit big-endian pair
// (high word first).
const (
	RegTotalW    = 0
	RegRoomCount = 2

	RoomBase   = 10
	RoomStride = 8

	RoomTransmissionW = 0
	RoomVentilationW  = 2
	RoomTotalW        = 4
	RoomFlowDeciLH    = 6

	// Undefined marks a flow rate that cannot be computed.
	Undefined uint32 = 0xFFFFFFFF
)

// registers renders s into the full input register image.
func registers(s report.Summary) []uint16 {
	regs := make([]uint16, RoomBase+RoomStride*len(s.Rooms))
	putU32(regs, RegTotalW, watts(s.TotalHeatLoadW))
	regs[RegRoomCount] = uint16(min(len(s.Rooms), math.MaxUint16))

	for i, r := range s.Rooms {
		base := RoomBase + RoomStride*i
		putU32(regs, base+RoomTransmissionW, watts(r.TransmissionLossW))
		putU32(regs, base+RoomVentilationW, watts(r.VentilationLossW))
		putU32(regs, base+RoomTotalW, watts(r.TotalHeatLoadW))

		flow := Undefined
		if r.FlowRateLH != nil {
			flow = clampU32(*r.FlowRateLH * 10)
		}
		putU32(regs, base+RoomFlowDeciLH, flow)
	}
	return regs
}

func watts(w float64) uint32 { return clampU32(w) }

func clampU32(v float64) uint32 {
	r := math.Round(v)
	switch {
	case math.IsNaN(r) || r <= 0:
		return 0
	case r >= float64(Undefined):
		// keep the undefined marker unambiguous
		return Undefined - 1
	default:
		return uint32(r)
	}
}

func putU32(regs []uint16, addr int, v uint32) {
	regs[addr] = uint16(v >> 16)
	regs[addr+1] = uint16(v)
}
