package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Frame is what observers receive after every advance.
type Frame struct {
	Step        int
	Filaments   []FilamentView
	GlobalOrder float64
	BlockOrder  float64
	Bonds       int
}

// Status summarises a running simulation.
type Status struct {
	Step        int     `json:"step"`
	GlobalOrder float64 `json:"globalOrder"`
	BlockOrder  float64 `json:"blockOrder"`
	Bonds       int     `json:"bonds"`
}

// Advance asks the actor to run n steps and then publish a Frame.
func Advance(n int64) *wrapperspb.Int64Value {
	return wrapperspb.Int64(n)
}

// StatusRequest asks the actor for a Status.
func StatusRequest() *emptypb.Empty {
	return &emptypb.Empty{}
}

// SimulationActor serialises access to one Simulation. The UI and the
// headless drivers only talk to it through messages.
type SimulationActor struct {
	sim       *Simulation
	frames    chan<- *Frame
	blockSize float64

	// --- Throughput stats ---
	stepsSinceLog int
	framesDropped int
	lastLogTime   time.Time
}

// NewSimulationActor wraps sim. frames may be nil when nobody renders.
func NewSimulationActor(sim *Simulation, frames chan<- *Frame) *SimulationActor {
	return &SimulationActor{
		sim:         sim,
		frames:      frames,
		blockSize:   sim.Config().BlockSize,
		lastLogTime: time.Now(),
	}
}

func (a *SimulationActor) PreStart(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("simulation actor starting with %d filaments", a.sim.Len())
	return nil
}

func (a *SimulationActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		ctx.Logger().Infof("%s started", ctx.Self().Name())
		a.pushFrame()

	case *wrapperspb.Int64Value:
		for i := int64(0); i < msg.GetValue(); i++ {
			a.sim.Step()
		}
		a.stepsSinceLog += int(msg.GetValue())
		a.logThroughput(ctx)
		a.pushFrame()

	case *emptypb.Empty:
		ctx.Response(a.status().toProto())

	default:
		ctx.Unhandled()
	}
}

func (a *SimulationActor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("simulation actor stopped at step %d with %d bonds",
		a.sim.StepCount(), a.sim.BondCount())
	return nil
}

func (a *SimulationActor) logThroughput(ctx *actor.ReceiveContext) {
	if time.Since(a.lastLogTime) >= time.Second {
		ctx.Logger().Infof("📊 STEP RATE: %d/sec | step %d | bonds %d | frames dropped %d",
			a.stepsSinceLog, a.sim.StepCount(), a.sim.BondCount(), a.framesDropped)
		a.stepsSinceLog = 0
		a.framesDropped = 0
		a.lastLogTime = time.Now()
	}
}

func (a *SimulationActor) pushFrame() {
	if a.frames == nil {
		return
	}
	select {
	case a.frames <- a.buildFrame():
	default:
		// UI busy, skip frame
		a.framesDropped++
	}
}

func (a *SimulationActor) buildFrame() *Frame {
	return &Frame{
		Step:        a.sim.StepCount(),
		Filaments:   a.sim.Snapshot(),
		GlobalOrder: a.sim.GlobalOrder(),
		BlockOrder:  a.sim.BlockOrder(a.blockSize),
		Bonds:       a.sim.BondCount(),
	}
}

func (a *SimulationActor) status() Status {
	return Status{
		Step:        a.sim.StepCount(),
		GlobalOrder: a.sim.GlobalOrder(),
		BlockOrder:  a.sim.BlockOrder(a.blockSize),
		Bonds:       a.sim.BondCount(),
	}
}

func (s Status) toProto() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"step":        structpb.NewNumberValue(float64(s.Step)),
		"globalOrder": structpb.NewNumberValue(s.GlobalOrder),
		"blockOrder":  structpb.NewNumberValue(s.BlockOrder),
		"bonds":       structpb.NewNumberValue(float64(s.Bonds)),
	}}
}

func statusFromProto(st *structpb.Struct) Status {
	fields := st.GetFields()
	return Status{
		Step:        int(fields["step"].GetNumberValue()),
		GlobalOrder: fields["globalOrder"].GetNumberValue(),
		BlockOrder:  fields["blockOrder"].GetNumberValue(),
		Bonds:       int(fields["bonds"].GetNumberValue()),
	}
}

// QueryStatus asks the actor behind pid for its Status.
func QueryStatus(ctx context.Context, pid *actor.PID, timeout time.Duration) (Status, error) {
	reply, err := actor.Ask(ctx, pid, StatusRequest(), timeout)
	if err != nil {
		return Status{}, fmt.Errorf("status request failed: %w", err)
	}
	st, ok := reply.(*structpb.Struct)
	if !ok {
		return Status{}, fmt.Errorf("unexpected status reply %T", reply)
	}
	return statusFromProto(st), nil
}
