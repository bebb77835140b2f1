package protocol

import (
	"fmt"
	"math"
	"strconv"

	. "github.com/ChizhovVadim/CounterReversi/pkg/common"
)

// Option is an engine setting that the GUI may change with setoption.
type Option interface {
	Name() string
	String() string
	Set(s string) error
}

type BoolOption struct {
	Key   string
	Value *bool
}

func (opt *BoolOption) Name() string {
	return opt.Key
}

func (opt *BoolOption) String() string {
	return fmt.Sprintf("option name %v type check default %v", opt.Key, *opt.Value)
}

func (opt *BoolOption) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("option %v: %w", opt.Key, err)
	}
	*opt.Value = v
	return nil
}

type IntOption struct {
	Key   string
	Min   int
	Max   int
	Value *int
}

func (opt *IntOption) Name() string {
	return opt.Key
}

func (opt *IntOption) String() string {
	return fmt.Sprintf("option name %v type spin default %v min %v max %v",
		opt.Key, *opt.Value, opt.Min, opt.Max)
}

func (opt *IntOption) Set(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("option %v: %w", opt.Key, err)
	}
	if v < opt.Min || v > opt.Max {
		return fmt.Errorf("option %v: %v not in [%v, %v]", opt.Key, v, opt.Min, opt.Max)
	}
	*opt.Value = v
	return nil
}

// DiscOption is a value set in discs, such as "1.5", and stored in
// StoneValue units.
type DiscOption struct {
	Key   string
	Limit int
	Value *int
}

func (opt *DiscOption) Name() string {
	return opt.Key
}

func (opt *DiscOption) String() string {
	return fmt.Sprintf("option name %v type string default %v",
		opt.Key, strconv.FormatFloat(float64(*opt.Value)/StoneValue, 'f', -1, 64))
}

func (opt *DiscOption) Set(s string) error {
	discs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("option %v: %w", opt.Key, err)
	}
	if math.IsNaN(discs) || math.Abs(discs) > float64(opt.Limit) {
		return fmt.Errorf("option %v: %v discs not in [%v, %v]", opt.Key, s, -opt.Limit, opt.Limit)
	}
	*opt.Value = int(math.Round(discs * StoneValue))
	return nil
}
