package scene

import (
	"fmt"
	"math"
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"photohall/pkg/core"
)

const eps = 1e-6

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func testProjector() Projector {
	pose := core.CameraPose{Position: mgl64.Vec3{0, 1, 0}, Target: mgl64.Vec3{0, 1, 5}}
	return NewProjector(pose, 800, 600)
}

func TestProjectCenterAndBehind(t *testing.T) {
	p := testProjector()

	pt, depth, ok := p.Project(mgl64.Vec3{0, 1, 5})
	if !ok || !near(pt.X(), 400) || !near(pt.Y(), 300) || !near(depth, 5) {
		t.Errorf("target = %v depth %f ok %v, want screen center at depth 5", pt, depth, ok)
	}

	if _, _, ok := p.Project(mgl64.Vec3{0, 1, -1}); ok {
		t.Error("point behind camera should not project")
	}

	// 右手系：朝 +Z 看时 +X 在屏幕左侧，+Y 在上方
	pt, _, _ = p.Project(mgl64.Vec3{1, 2, 5})
	if pt.X() >= 400 || pt.Y() >= 300 {
		t.Errorf("(+x, +y) projected to %v", pt)
	}
}

func TestProjectFartherIsSmaller(t *testing.T) {
	p := testProjector()
	a, _, _ := p.Project(mgl64.Vec3{1, 1, 2})
	b, _, _ := p.Project(mgl64.Vec3{1, 1, 8})
	if math.Abs(a.X()-400) <= math.Abs(b.X()-400) {
		t.Errorf("offset at z=2 (%f) should exceed offset at z=8 (%f)", a.X()-400, b.X()-400)
	}
}

func TestSegmentClipsNearPlane(t *testing.T) {
	p := testProjector()

	a, b, ok := p.Segment(mgl64.Vec3{0, 0, -3}, mgl64.Vec3{0, 0, 10})
	if !ok {
		t.Fatal("segment crossing the near plane should be kept")
	}
	for _, v := range []mgl64.Vec2{a, b} {
		if math.IsNaN(v.X()) || math.IsInf(v.Y(), 0) {
			t.Errorf("clipped endpoint %v is not finite", v)
		}
	}
	if a.Y() <= b.Y() {
		t.Errorf("floor point near the camera (%v) should be lower on screen than far one (%v)", a, b)
	}

	if _, _, ok := p.Segment(mgl64.Vec3{0, 0, -3}, mgl64.Vec3{1, 0, -1}); ok {
		t.Error("segment entirely behind the camera should be dropped")
	}
}

func TestCornersAndGrid(t *testing.T) {
	c := Corners(mgl64.Vec3{0, 1, 3}, 0, 0.5, 0.25)
	want := [4]mgl64.Vec3{{-0.5, 1.25, 3}, {0.5, 1.25, 3}, {0.5, 0.75, 3}, {-0.5, 0.75, 3}}
	for i := range c {
		if !c[i].ApproxEqual(want[i]) {
			t.Errorf("corner %d = %v, want %v", i, c[i], want[i])
		}
	}

	g := Grid(c, 2)
	if len(g) != 9 {
		t.Fatalf("grid has %d points, want 9", len(g))
	}
	if !g[0].ApproxEqual(c[0]) || !g[8].ApproxEqual(c[2]) || !g[4].ApproxEqual(mgl64.Vec3{0, 1, 3}) {
		t.Errorf("grid = %v", g)
	}
}

func TestExhibitCornersScale(t *testing.T) {
	ex := core.ExhibitView{Position: mgl64.Vec3{-3.86, 1.55, 6}, Yaw: math.Pi / 2, Scale: 2}
	frame, photo := ExhibitCorners(ex)

	width := frame[0].Sub(frame[1]).Len()
	if !near(width, FrameWidth*2) {
		t.Errorf("scaled frame width = %f, want %f", width, FrameWidth*2)
	}
	// 照片向墙外（+X）偏移
	if photo[0].X() <= frame[0].X() {
		t.Errorf("photo x %f should sit in front of frame x %f", photo[0].X(), frame[0].X())
	}

	_, unscaled := ExhibitCorners(core.ExhibitView{Scale: 0})
	if w := unscaled[0].Sub(unscaled[1]).Len(); !near(w, PhotoWidth) {
		t.Errorf("zero scale should fall back to 1, width = %f", w)
	}
}

func TestHallEdges(t *testing.T) {
	h := core.DefaultConfig().Hall
	edges := HallEdges(h)
	floorLines := int(math.Ceil(h.Length/floorStep)) - 1
	if len(edges) != 10+floorLines {
		t.Errorf("edges = %d, want %d", len(edges), 10+floorLines)
	}
	for _, e := range edges {
		for _, v := range e {
			if math.Abs(v.X()) > h.Width/2+eps || v.Z() < 0 || v.Z() > h.Length+eps {
				t.Errorf("edge point %v outside hall", v)
			}
		}
	}
}

type recordSink struct{ events []string }

func (s *recordSink) PointerDown(id core.PointerID, p mgl64.Vec2) {
	s.events = append(s.events, fmt.Sprintf("down %d %.0f,%.0f", id, p.X(), p.Y()))
}

func (s *recordSink) PointerMove(id core.PointerID, p mgl64.Vec2) {
	s.events = append(s.events, fmt.Sprintf("move %d %.0f,%.0f", id, p.X(), p.Y()))
}

func (s *recordSink) PointerUp(id core.PointerID) {
	s.events = append(s.events, fmt.Sprintf("up %d", id))
}

func TestPointerTracker(t *testing.T) {
	tr := NewPointerTracker()
	sink := &recordSink{}

	tr.Set(3, mgl64.Vec2{10, 10})
	tr.Set(core.MousePointer, mgl64.Vec2{5, 5})
	tr.Flush(sink)

	tr.Set(3, mgl64.Vec2{12, 10})
	tr.Set(core.MousePointer, mgl64.Vec2{5, 5})
	tr.Flush(sink)
	if tr.Pressed() != 2 {
		t.Errorf("pressed = %d, want 2", tr.Pressed())
	}

	tr.Set(4, mgl64.Vec2{1, 1})
	tr.Flush(sink)

	tr.Flush(sink)

	want := []string{
		"down -1 5,5", "down 3 10,10",
		"move 3 12,10",
		"up -1", "up 3", "down 4 1,1",
		"up 4",
	}
	if !slices.Equal(sink.events, want) {
		t.Errorf("events =\n%v\nwant\n%v", sink.events, want)
	}
	if tr.Pressed() != 0 {
		t.Errorf("pressed after release = %d", tr.Pressed())
	}
}

func TestPointerTrackerDrivesJoystick(t *testing.T) {
	cfg := core.DefaultConfig()
	g, err := core.NewGame(cfg, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	center := JoystickCenter(800, 600, cfg.Joystick)
	g.SetJoystickCenter(center)

	tr := NewPointerTracker()
	target, ok := KeyboardTarget(center, cfg.Joystick.Radius, mgl64.Vec2{0, 1})
	if !ok {
		t.Fatal("forward key should produce a target")
	}
	tr.Set(KeyboardPointer, target)
	tr.Flush(g)

	if v := g.Joystick.Value(); !near(v.Y(), 1) || !near(v.X(), 0) {
		t.Errorf("joystick value = %v, want (0, 1)", v)
	}

	tr.Flush(g)
	if g.Joystick.Active() {
		t.Error("joystick should reset after the key is released")
	}
}

func TestLayout(t *testing.T) {
	cfg := core.DefaultConfig().Joystick
	c := JoystickCenter(800, 600, cfg)
	if c.X() != cfg.HitHalfExtent+JoystickMargin || c.Y() != 600-cfg.HitHalfExtent-JoystickMargin {
		t.Errorf("joystick center = %v", c)
	}

	if _, ok := KeyboardTarget(c, 46, mgl64.Vec2{}); ok {
		t.Error("zero direction should not press")
	}
	diag, _ := KeyboardTarget(c, 46, mgl64.Vec2{1, 1})
	if !near(diag.Sub(c).Len(), 46) {
		t.Errorf("diagonal target distance = %f, want radius", diag.Sub(c).Len())
	}

	btn := CloseButton(800)
	if !btn.Contains(mgl64.Vec2{800 - closeInset - 1, closeInset + 1}) || btn.Contains(mgl64.Vec2{400, 300}) {
		t.Errorf("close button = %+v", btn)
	}
}

func TestFitRect(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH float64
	}{
		{"wide image fits width", 2000, 1000, 704, 352},
		{"tall image fits height", 500, 1000, 252, 504},
		{"small image not upscaled", 100, 50, 100, 50},
		{"empty image", 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := FitRect(tt.w, tt.h, 800, 600)
			gotW, gotH := r.Max.X()-r.Min.X(), r.Max.Y()-r.Min.Y()
			if !near(gotW, tt.wantW) || !near(gotH, tt.wantH) {
				t.Errorf("size = %.1f x %.1f, want %.1f x %.1f", gotW, gotH, tt.wantW, tt.wantH)
			}
			if cx := (r.Min.X() + r.Max.X()) / 2; !near(cx, 400) {
				t.Errorf("center x = %f, want 400", cx)
			}
		})
	}
}

// newNearGame 返回一个站在第一个展品旁边的会话
func newNearGame(t *testing.T) *core.Game {
	t.Helper()
	cfg := core.DefaultConfig()
	g, err := core.NewGame(cfg, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	g.SetJoystickCenter(JoystickCenter(800, 600, cfg.Joystick))
	g.Player.Position = g.Exhibits.At(0).Position.Add(mgl64.Vec3{1, 0, 0})
	g.Tick(1.0 / 60)
	if _, ok := g.Active(); !ok {
		t.Fatal("player should be next to an exhibit")
	}
	return g
}

// click 按下并在下一帧抬起
func click(tr *PointerTracker, g *core.Game, p mgl64.Vec2) {
	tr.Set(core.MousePointer, p)
	Dispatch(tr, g, 800, FrameInput{Presses: []mgl64.Vec2{p}})
	Dispatch(tr, g, 800, FrameInput{})
}

func TestDispatchCloseButton(t *testing.T) {
	g := newNearGame(t)
	tr := NewPointerTracker()
	btn := CloseButton(800)
	inside := btn.Min.Add(btn.Max).Mul(0.5)

	// 漫游时点到按钮位置只会打开，不会在同一帧关闭
	click(tr, g, inside)
	if g.Mode() != core.ViewInspecting {
		t.Fatalf("mode = %s, want Inspecting", g.Mode())
	}

	// 查看时点关闭按钮回到漫游，且不会重新打开
	click(tr, g, inside)
	if g.Mode() != core.ViewExploring {
		t.Errorf("mode after close click = %s, want Exploring", g.Mode())
	}
}

func TestDispatchEscape(t *testing.T) {
	g := newNearGame(t)
	tr := NewPointerTracker()

	Dispatch(tr, g, 800, FrameInput{Escape: true})
	if g.Mode() != core.ViewExploring {
		t.Errorf("escape while exploring changed mode to %s", g.Mode())
	}

	click(tr, g, mgl64.Vec2{400, 300})
	if g.Mode() != core.ViewInspecting {
		t.Fatalf("mode = %s, want Inspecting", g.Mode())
	}

	// 按钮之外的点击不关闭
	click(tr, g, mgl64.Vec2{400, 300})
	if g.Mode() != core.ViewInspecting {
		t.Errorf("click outside the button closed the overlay")
	}

	Dispatch(tr, g, 800, FrameInput{Escape: true})
	if g.Mode() != core.ViewExploring {
		t.Errorf("mode after escape = %s, want Exploring", g.Mode())
	}
}

func TestCloseRequested(t *testing.T) {
	btn := CloseButton(800)
	tests := []struct {
		name string
		in   FrameInput
		want bool
	}{
		{"nothing", FrameInput{}, false},
		{"escape", FrameInput{Escape: true}, true},
		{"press on button", FrameInput{Presses: []mgl64.Vec2{btn.Min}}, true},
		{"press elsewhere", FrameInput{Presses: []mgl64.Vec2{{10, 10}}}, false},
		{"second touch on button", FrameInput{Presses: []mgl64.Vec2{{10, 10}, btn.Max}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CloseRequested(800, tt.in); got != tt.want {
				t.Errorf("CloseRequested = %v, want %v", got, tt.want)
			}
		})
	}
}
