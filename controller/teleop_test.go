package controller

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/pthm-cable/homeostat/backend"
)

func TestTeleop(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCmds  []backend.WheelCommand
		wantStops int
		wantOut   string
	}{
		{
			name:  "all directions",
			input: "z q s d",
			wantCmds: []backend.WheelCommand{
				{Left: 200, Right: 200},
				{Left: -200, Right: 200},
				{Left: -200, Right: -200},
				{Left: 200, Right: -200},
			},
			wantStops: 1,
		},
		{
			name:      "stop key",
			input:     "ze",
			wantCmds:  []backend.WheelCommand{{Left: 200, Right: 200}},
			wantStops: 2,
		},
		{
			name:      "exit ignores the rest",
			input:     "az",
			wantStops: 1,
		},
		{
			name:      "unknown key",
			input:     "x\n",
			wantStops: 1,
			wantOut:   "unknown command 'x'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			act := &backend.RecordingActuator{}
			battery := backend.StaticBattery(backend.EncodeBattery(backend.Battery{ChargePct: 80}))
			var out bytes.Buffer

			tp := NewTeleop(testConfig(), act, battery, &out)
			if err := tp.Run(context.Background(), strings.NewReader(tt.input)); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			cmds := act.Commands()
			if len(cmds) != len(tt.wantCmds) {
				t.Fatalf("commands = %+v, want %+v", cmds, tt.wantCmds)
			}
			for i := range cmds {
				if cmds[i] != tt.wantCmds[i] {
					t.Errorf("command %d = %+v, want %+v", i, cmds[i], tt.wantCmds[i])
				}
			}
			if act.Stops() != tt.wantStops {
				t.Errorf("Stops() = %d, want %d", act.Stops(), tt.wantStops)
			}
			if tt.wantOut != "" && !strings.Contains(out.String(), tt.wantOut) {
				t.Errorf("output %q does not contain %q", out.String(), tt.wantOut)
			}
		})
	}
}
