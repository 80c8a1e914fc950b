package policy

import (
	"fmt"

	"github.com/san-kum/pursuitsim/internal/pursuit"
)

type Zero struct{}

func (Zero) Act(pursuit.Observation) pursuit.Action { return pursuit.Action{} }

type Constant struct {
	Action pursuit.Action
}

func NewConstant(steer, accel float32) *Constant {
	return &Constant{Action: pursuit.Action{steer, accel}}
}

func (c *Constant) Act(pursuit.Observation) pursuit.Action { return c.Action }

func (c *Constant) GetParams() map[string]float64 {
	return map[string]float64{
		"steer": float64(c.Action[0]),
		"accel": float64(c.Action[1]),
	}
}

func (c *Constant) SetParam(name string, value float64) error {
	switch name {
	case "steer":
		c.Action[0] = float32(value)
	case "accel":
		c.Action[1] = float32(value)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	return nil
}
