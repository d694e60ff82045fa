// Package scenarios replays scripted datagram exchanges against an
// in-process dispatch controller and checks the replies.
package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/jobgate/core/dispatch"
)

// Step sends one datagram. Expect, when set, is the reply that must come
// back before the next step runs.
type Step struct {
	Send   string `yaml:"send"`
	Expect string `yaml:"expect,omitempty"`
	WaitMS int    `yaml:"wait_ms,omitempty"`
}

// Expected describes what must hold once every step ran.
type Expected struct {
	// Replies are the remaining replies, in order.
	Replies  []string `yaml:"replies"`
	Accepted *uint64  `yaml:"accepted,omitempty"`
	Rejected *uint64  `yaml:"rejected,omitempty"`
	QueueLen *int     `yaml:"queue_len,omitempty"`
}

type Scenario struct {
	Name           string        `yaml:"name"`
	Description    string        `yaml:"description,omitempty"`
	Mode           dispatch.Mode `yaml:"mode"`
	TickIntervalMS int           `yaml:"tick_interval_ms,omitempty"`
	QueueCapacity  int           `yaml:"queue_capacity,omitempty"`
	EchoBody       bool          `yaml:"echo_body,omitempty"`
	TimeoutMS      int           `yaml:"timeout_ms,omitempty"`
	Steps          []Step        `yaml:"steps"`
	Expected       Expected      `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("%s: scenario has no name", path)
	}
	return &sc, nil
}

func (sc *Scenario) config() dispatch.Config {
	return dispatch.Config{
		Mode:           sc.Mode,
		TickIntervalMS: sc.TickIntervalMS,
		QueueCapacity:  sc.QueueCapacity,
		EchoBody:       sc.EchoBody,
	}
}
