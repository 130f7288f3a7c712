package replica

import (
	"fmt"
)

const (
	// CodeLen is the L1 C/A code period in chips.
	CodeLen = 1023
	// ChipRate is the L1 C/A chipping rate in Hz.
	ChipRate = 1.023e6
)

// G2 delays in chips for PRN 1..37 (IS-GPS-200 table 3-Ia).
var g2Delay = []int{
	5, 6, 7, 8, 17, 18, 139, 140, 141, 251,
	252, 254, 255, 256, 257, 258, 469, 470, 471, 472,
	473, 474, 509, 512, 513, 514, 515, 516, 859, 860,
	861, 862, 863, 950, 947, 948, 950,
}

// lfsr runs a 10 stage register seeded with all ones and returns the stage
// 10 output for one period. Taps are 1-based stage numbers.
func lfsr(taps ...int) []int8 {
	var reg [10]int8
	for i := range reg {
		reg[i] = 1
	}
	out := make([]int8, CodeLen)
	for i := range out {
		out[i] = reg[9]
		var fb int8
		for _, t := range taps {
			fb ^= reg[t-1]
		}
		copy(reg[1:], reg[:9])
		reg[0] = fb
	}
	return out
}

// CodeL1CA returns the GPS L1 C/A Gold code for prn as +1/-1 chips, with
// logic 0 mapped to +1.
func CodeL1CA(prn int) ([]int8, error) {
	if prn < 1 || prn > len(g2Delay) {
		return nil, fmt.Errorf("prn %d not in [1, %d]", prn, len(g2Delay))
	}
	g1 := lfsr(3, 10)
	g2 := lfsr(2, 3, 6, 8, 9, 10)
	delay := g2Delay[prn-1]
	code := make([]int8, CodeLen)
	for i := range code {
		bit := g1[i] ^ g2[(i-delay+CodeLen)%CodeLen]
		code[i] = 1 - 2*bit
	}
	return code, nil
}

// Sample holds each chip for samplesPerChip samples.
func Sample(code []int8, samplesPerChip int) []complex64 {
	if samplesPerChip < 1 {
		samplesPerChip = 1
	}
	out := make([]complex64, 0, len(code)*samplesPerChip)
	for _, c := range code {
		for k := 0; k < samplesPerChip; k++ {
			out = append(out, complex(float32(c), 0))
		}
	}
	return out
}
