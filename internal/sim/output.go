// Package sim delegates hydraulic simulation to the external EPANET
// command-line solver and decodes the binary output file it produces.
package sim

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"hydronet/internal/results"
)

// EPANET binary output file layout (little-endian, per the toolkit
// manual): an integer prolog, fixed-width text blocks, id/topology
// tables, one result block per reporting period, and a 12-byte epilog
// ending in the same magic number the file starts with.
const (
	outMagic   = 516114521
	idLen      = 32 // MAXID+1 in EPANET
	titleLen   = 80
	fileLen    = 260
	chemLen    = 32
	prologInts = 15
	epilogLen  = 28 // 4 reaction floats + periods + warning + magic
)

// prolog field order.
const (
	pMagic = iota
	pVersion
	pNodes
	pResTanks
	pLinks
	pPumps
	pValves
	pQuality
	pTraceNode
	pFlowUnits
	pPressUnits
	pStatistic
	pReportStart
	pReportStep
	pDuration
)

// node result order inside one period block.
const (
	nodeDemand = iota
	nodeHead
	nodePressure
	nodeQuality
	nodeQuantities
)

// link result order inside one period block.
const (
	linkFlow = iota
	linkVelocity
	linkHeadloss
	linkQuality
	linkStatus
	linkSetting
	linkReaction
	linkFriction
	linkQuantities
)

// ReadOutputFile decodes the .out file the solver wrote. The period
// count is taken from the epilog, which is only trustworthy when the
// run completed, so the epilog magic is checked before any results are
// decoded.
func ReadOutputFile(path string) (*results.ResultSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readOutput(f)
}

func readOutput(f io.ReadSeeker) (*results.ResultSet, error) {
	var epilog [epilogLen / 4]int32
	if _, err := f.Seek(-epilogLen, io.SeekEnd); err != nil {
		return nil, fmt.Errorf("epanet output: %w", err)
	}
	if err := binary.Read(f, binary.LittleEndian, epilog[:]); err != nil {
		return nil, fmt.Errorf("epanet output: truncated epilog: %w", err)
	}
	if epilog[6] != outMagic {
		return nil, fmt.Errorf("epanet output: bad epilog magic %d, solver did not finish cleanly", epilog[6])
	}
	periods := int(epilog[4])
	if periods < 1 {
		return nil, fmt.Errorf("epanet output: no reporting periods")
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	var prolog [prologInts]int32
	if err := binary.Read(f, binary.LittleEndian, prolog[:]); err != nil {
		return nil, fmt.Errorf("epanet output: truncated prolog: %w", err)
	}
	if prolog[pMagic] != outMagic {
		return nil, fmt.Errorf("epanet output: bad magic %d", prolog[pMagic])
	}
	nNodes := int(prolog[pNodes])
	nResTanks := int(prolog[pResTanks])
	nLinks := int(prolog[pLinks])
	nPumps := int(prolog[pPumps])
	if nNodes < 1 || nNodes > 1<<24 || nLinks < 0 || nLinks > 1<<24 {
		return nil, fmt.Errorf("epanet output: implausible element counts (%d nodes, %d links)", nNodes, nLinks)
	}
	reportStart := int(prolog[pReportStart])
	reportStep := int(prolog[pReportStep])

	// Title lines, file names, chemical name and units: fixed-width
	// text we have no use for.
	if err := skip(f, 3*titleLen+2*fileLen+2*chemLen); err != nil {
		return nil, err
	}

	nodeIDs, err := readIDs(f, nNodes)
	if err != nil {
		return nil, err
	}
	linkIDs, err := readIDs(f, nLinks)
	if err != nil {
		return nil, err
	}

	// Link connectivity (3 ints each), tank index + area tables, node
	// elevations, link lengths and diameters: static data the tables
	// already hold.
	if err := skip(f, nLinks*3*4+nResTanks*8+nNodes*4+nLinks*8); err != nil {
		return nil, err
	}
	// Pump energy block: 7 floats per pump plus one peak demand value.
	if nPumps > 0 {
		if err := skip(f, nPumps*7*4+4); err != nil {
			return nil, err
		}
	}

	rs := &results.ResultSet{
		Pressure: newSeries(nodeIDs, periods, reportStart, reportStep),
		Head:     newSeries(nodeIDs, periods, reportStart, reportStep),
		Demand:   newSeries(nodeIDs, periods, reportStart, reportStep),
		Flow:     newSeries(linkIDs, periods, reportStart, reportStep),
		Velocity: newSeries(linkIDs, periods, reportStart, reportStep),
	}

	nodeBuf := make([]float32, nNodes)
	linkBuf := make([]float32, nLinks)
	for p := 0; p < periods; p++ {
		for q := 0; q < nodeQuantities; q++ {
			if err := binary.Read(f, binary.LittleEndian, nodeBuf); err != nil {
				return nil, fmt.Errorf("epanet output: period %d node block: %w", p, err)
			}
			switch q {
			case nodeDemand:
				fill(rs.Demand, p, nodeBuf)
			case nodeHead:
				fill(rs.Head, p, nodeBuf)
			case nodePressure:
				fill(rs.Pressure, p, nodeBuf)
			}
		}
		for q := 0; q < linkQuantities; q++ {
			if err := binary.Read(f, binary.LittleEndian, linkBuf); err != nil {
				return nil, fmt.Errorf("epanet output: period %d link block: %w", p, err)
			}
			switch q {
			case linkFlow:
				fill(rs.Flow, p, linkBuf)
			case linkVelocity:
				fill(rs.Velocity, p, linkBuf)
			}
		}
	}

	return rs, nil
}

func newSeries(ids []string, periods, start, step int) *results.TimeSeries {
	ts := &results.TimeSeries{IDs: ids}
	ts.Times = make([]int, periods)
	ts.Values = make([][]float64, periods)
	for i := 0; i < periods; i++ {
		ts.Times[i] = start + i*step
		ts.Values[i] = make([]float64, len(ids))
	}
	return ts
}

func fill(ts *results.TimeSeries, period int, buf []float32) {
	for j, v := range buf {
		val := float64(v)
		if math.IsNaN(val) || math.IsInf(val, 0) {
			val = 0
		}
		ts.Values[period][j] = val
	}
}

func readIDs(f io.Reader, n int) ([]string, error) {
	buf := make([]byte, idLen)
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		if _, err := io.ReadFull(f, buf); err != nil {
			return nil, fmt.Errorf("epanet output: truncated id table: %w", err)
		}
		s := buf
		if j := bytes.IndexByte(s, 0); j >= 0 {
			s = s[:j]
		}
		ids[i] = strings.TrimSpace(string(s))
	}
	return ids, nil
}

func skip(f io.ReadSeeker, n int) error {
	if _, err := f.Seek(int64(n), io.SeekCurrent); err != nil {
		return fmt.Errorf("epanet output: %w", err)
	}
	return nil
}
