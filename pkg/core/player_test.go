package core

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestNewPlayerSpawn(t *testing.T) {
	cfg := DefaultConfig()
	p := NewPlayer(cfg)
	if p.Position != (mgl64.Vec3{0, 0, 1.2}) {
		t.Errorf("spawn = %v, want (0, 0, 1.2)", p.Position)
	}
	if p.Yaw != 0 {
		t.Errorf("spawn yaw = %f, want 0", p.Yaw)
	}
}

func TestPlayerForwardFromEntrance(t *testing.T) {
	cfg := DefaultConfig()
	bounds := cfg.Hall.Bounds()
	p := &Player{Position: mgl64.Vec3{0, 0, 0.7}}

	dt := 1.0 / 60
	prev := p.Position.Z()
	for i := 0; i < 10; i++ {
		p.Update(mgl64.Vec2{0, 1}, cfg.Player, bounds, dt)
		z := p.Position.Z()
		if z <= prev {
			t.Fatalf("tick %d: z did not increase (%f -> %f)", i, prev, z)
		}
		if step := z - prev; step > cfg.Player.Speed*dt+floatTolerance {
			t.Fatalf("tick %d: step %f exceeds speed*dt", i, step)
		}
		prev = z
	}
	if p.Position.X() != 0 || p.Position.Y() != 0 {
		t.Errorf("straight walk drifted: %v", p.Position)
	}
	if p.Yaw != 0 {
		t.Errorf("yaw changed while walking along +Z: %f", p.Yaw)
	}
}

func TestPlayerStaysInBounds(t *testing.T) {
	cfg := DefaultConfig()
	bounds := cfg.Hall.Bounds()
	inputs := []mgl64.Vec2{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {0.7, 0.7}, {-0.7, -0.7}}

	for _, in := range inputs {
		p := NewPlayer(cfg)
		for i := 0; i < 3000; i++ {
			p.Update(in, cfg.Player, bounds, MaxDeltaTime)
			if !bounds.Contains(p.Position) {
				t.Fatalf("input %v tick %d: %v out of bounds", in, i, p.Position)
			}
		}
	}
}

func TestPlayerFrameRateIndependent(t *testing.T) {
	cfg := DefaultConfig()
	bounds := cfg.Hall.Bounds()

	a := &Player{Position: mgl64.Vec3{0, 0, 5}}
	b := &Player{Position: mgl64.Vec3{0, 0, 5}}
	in := mgl64.Vec2{0, 1}

	for i := 0; i < 30; i++ {
		a.Update(in, cfg.Player, bounds, 1.0/30)
		b.Update(in, cfg.Player, bounds, 1.0/60)
		b.Update(in, cfg.Player, bounds, 1.0/60)
	}

	if !floatEquals(a.Velocity.Z(), b.Velocity.Z()) {
		t.Errorf("velocity differs: 30Hz %f, 60Hz %f", a.Velocity.Z(), b.Velocity.Z())
	}
	// 显式积分的位置误差有界（约 0.02 米）
	if d := math.Abs(a.Position.Z() - b.Position.Z()); d > 0.03 {
		t.Errorf("position differs by %f", d)
	}
}

func TestPlayerReleaseDecays(t *testing.T) {
	cfg := DefaultConfig()
	bounds := cfg.Hall.Bounds()
	p := &Player{Position: mgl64.Vec3{0, 0, 10}}
	for i := 0; i < 60; i++ {
		p.Update(mgl64.Vec2{0, 1}, cfg.Player, bounds, 1.0/60)
	}
	moving := p.PlanarSpeed()

	p.Update(mgl64.Vec2{}, cfg.Player, bounds, 1.0/60)
	if p.PlanarSpeed() >= moving {
		t.Errorf("speed should drop after release: %f -> %f", moving, p.PlanarSpeed())
	}
	for i := 0; i < 120; i++ {
		p.Update(mgl64.Vec2{}, cfg.Player, bounds, 1.0/60)
	}
	if p.PlanarSpeed() > 0.01 {
		t.Errorf("player still moving after 2s release: %f", p.PlanarSpeed())
	}
}

func TestPlayerTurnsTowardsVelocity(t *testing.T) {
	cfg := DefaultConfig()
	bounds := cfg.Hall.Bounds()
	p := &Player{Position: mgl64.Vec3{0, 0, 10}}

	// 低速时不转向
	p.Velocity = mgl64.Vec3{0.1, 0, 0}
	p.Update(mgl64.Vec2{}, cfg.Player, bounds, 1.0/60)
	if p.Yaw != 0 {
		t.Errorf("yaw changed below the speed threshold: %f", p.Yaw)
	}

	for i := 0; i < 300; i++ {
		p.Update(mgl64.Vec2{1, 0}, cfg.Player, bounds, 1.0/60)
	}
	if math.Abs(p.Yaw-math.Pi/2) > 0.01 {
		t.Errorf("yaw = %f, want about π/2 when walking +X", p.Yaw)
	}
}

func TestPlayerStop(t *testing.T) {
	p := &Player{Velocity: mgl64.Vec3{1, 0, 2}}
	p.Stop()
	if p.Velocity != (mgl64.Vec3{}) {
		t.Errorf("velocity after Stop = %v", p.Velocity)
	}
}
