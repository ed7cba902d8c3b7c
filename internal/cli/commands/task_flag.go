package commands

import (
	"github.com/spf13/pflag"

	"github.com/ccollicutt/honeylog/pkg/analyzer"
)

// taskValue is a pflag.Value that only accepts known task names, so an
// invalid --task is rejected while flags are parsed.
type taskValue struct {
	task analyzer.Task
}

var _ pflag.Value = (*taskValue)(nil)

func (v *taskValue) String() string {
	return string(v.task)
}

func (v *taskValue) Set(s string) error {
	t, err := analyzer.ParseTask(s)
	if err != nil {
		return err
	}
	v.task = t
	return nil
}

func (v *taskValue) Type() string {
	return "task"
}
