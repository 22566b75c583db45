// =======================
// ops/gate.go
// =======================

package ops

// GateType tags one primitive bitwise operation.
type GateType string

const (
	GateAND  GateType = "AND"
	GateOR   GateType = "OR"
	GateXOR  GateType = "XOR"
	GateNOT  GateType = "NOT"
	GateROTR GateType = "ROTR"
	GateSHR  GateType = "SHR"
	GateADD  GateType = "ADD"
)

// Position is a layout hint for circuit renderers. It never affects results.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Gate is a single operation inside a compound function. Amount is only set
// for ROTR and SHR gates.
type Gate struct {
	Type     GateType `json:"type"`
	Inputs   []uint32 `json:"inputs"`
	Output   uint32   `json:"output"`
	Amount   uint     `json:"amount,omitempty"`
	Position Position `json:"position"`
}

// circuit collects gates while a compound function runs. A nil circuit
// records nothing, which is how the pure forms share code with the traced ones.
type circuit struct {
	gates []Gate
}

func (c *circuit) emit(t GateType, out uint32, amount uint, x, y int, in ...uint32) {
	if c == nil {
		return
	}
	c.gates = append(c.gates, Gate{
		Type:     t,
		Inputs:   in,
		Output:   out,
		Amount:   amount,
		Position: Position{X: x, Y: y},
	})
}

func (c *circuit) rotr(v uint32, n uint, x, y int) uint32 {
	out := RotateRight(v, n)
	c.emit(GateROTR, out, n, x, y, v)
	return out
}

func (c *circuit) shr(v uint32, n uint, x, y int) uint32 {
	out := ShiftRight(v, n)
	c.emit(GateSHR, out, n, x, y, v)
	return out
}

func (c *circuit) xor(a, b uint32, x, y int) uint32 {
	out := a ^ b
	c.emit(GateXOR, out, 0, x, y, a, b)
	return out
}

func (c *circuit) and(a, b uint32, x, y int) uint32 {
	out := a & b
	c.emit(GateAND, out, 0, x, y, a, b)
	return out
}

func (c *circuit) not(a uint32, x, y int) uint32 {
	out := ^a
	c.emit(GateNOT, out, 0, x, y, a)
	return out
}

func (c *circuit) result() []Gate {
	if c == nil {
		return nil
	}
	return c.gates
}
