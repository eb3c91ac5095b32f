package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/homeostat/components"
	"github.com/pthm-cable/homeostat/config"
)

// DrivePanelData holds everything the drive panel shows for one tick.
type DrivePanelData struct {
	Drives    components.Drives
	Frame     components.SensorFrame
	Command   components.Command
	Winner    components.DriveKind
	SensorMax float32 // largest mapped sensor value
}

// DrivePanel renders the three drives, the mapped sensors and the last
// wheel command.
type DrivePanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	drive    []FieldDescriptor
}

// NewDrivePanel creates a drive panel.
func NewDrivePanel(x, y, width int32) *DrivePanel {
	return &DrivePanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		drive:    driveFields(),
	}
}

// SetPosition updates the panel position.
func (p *DrivePanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// driveFields converts the drive metadata into widgets. Callers pass a
// *components.Drive as the data.
func driveFields() []FieldDescriptor {
	var fields []FieldDescriptor
	for _, md := range components.DriveFieldDescriptors() {
		id := md.ID
		fd := FieldDescriptor{
			ID:     id,
			Label:  md.Label,
			Format: md.Format,
			Range:  FieldRange{Min: float32(md.Min), Max: float32(md.Max)},
			Getter: func(data any) float32 {
				return float32(components.GetDriveValue(data.(*components.Drive), id))
			},
		}
		switch {
		case id == "level":
			fd.Widget = WidgetLevelBar
		case md.IsBar:
			fd.Widget = WidgetBar
		default:
			fd.Widget = WidgetText
		}
		if !md.ShowWhenZero {
			get := fd.Getter
			fd.Visible = func(data any) bool { return get(data) != 0 }
		}
		fields = append(fields, fd)
	}
	return fields
}

// Draw renders the panel and returns the bottom Y.
func (p *DrivePanel) Draw(data DrivePanelData) int32 {
	r := p.renderer
	padding := r.Theme.Padding
	contentWidth := p.width - padding*2
	x := p.x + padding

	r.DrawPanel(p.x, p.y, p.width, p.height())
	y := p.y + padding

	for _, kind := range components.AllDrives() {
		d := data.Drives.Get(kind)
		title := kind.String()
		if kind == data.Winner {
			title += "  <"
		}
		y = r.DrawSection(x, y, SectionDescriptor{ID: kind.String(), Title: title, Fields: p.drive}, d, contentWidth)
	}

	y = r.DrawSectionHeader(x, y, "sensors")
	sensorRange := FieldRange{Min: 0, Max: data.SensorMax}
	for i := 0; i < config.NumSensors; i++ {
		y = r.DrawBar(x, y, fmt.Sprintf("s%d", i), float32(data.Frame.Current[i]), sensorRange, contentWidth)
	}
	y += 4

	y = r.DrawSectionHeader(x, y, "wheels")
	y = r.DrawCenteredBar(x, y, "left", float32(data.Command.Left), 1, contentWidth)
	y = r.DrawCenteredBar(x, y, "right", float32(data.Command.Right), 1, contentWidth)
	if n := len(data.Command.Pulses); n > 0 {
		rl.DrawText(fmt.Sprintf("%d pulses", n), x, y, r.Theme.FontSize, r.Theme.SectionHeader)
		y += r.Theme.LineHeight
	}

	return y
}

func (p *DrivePanel) height() int32 {
	t := p.renderer.Theme
	rows := int32(3*(len(p.drive)+1) + config.NumSensors + 1 + 3 + 1)
	return rows*(t.LineHeight+2) + t.Padding*2 + 16
}
