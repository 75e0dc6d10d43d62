// Command primblock builds, inspects and exercises primitive blocks.
//
//	primblock build -o walls.pacs_prim walls.yaml
//	primblock dump walls.pacs_prim
//	primblock check a.pacs_prim b.pacs_prim
//	primblock simulate -config pacs.yaml -block walls.pacs_prim -steps 100
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/pacs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: primblock build|dump|check|simulate [flags] args")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	var err error
	switch os.Args[1] {
	case "build":
		err = build(os.Args[2:])
	case "dump":
		err = dump(os.Args[2:])
	case "check":
		err = check(os.Args[2:])
	case "simulate":
		err = simulate(os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "primblock:", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}
	logger, err := config.Build()
	if err != nil {
		panic(err)
	}
	return logger
}

func build(args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	out := fs.String("o", "", "output block file")
	maxSize := fs.Float64("max-size", 0, "reject primitives larger than this (0 disables)")
	fs.Parse(args)
	if fs.NArg() != 1 || *out == "" {
		return fmt.Errorf("build: want -o out.pacs_prim src.yaml")
	}

	src, err := os.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer src.Close()
	block, err := pacs.DecodePrimitiveBlockYAML(src)
	if err != nil {
		return err
	}
	if *maxSize > 0 {
		if err := block.Validate(*maxSize); err != nil {
			return err
		}
	}

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	if err := pacs.WritePrimitiveBlock(f, block); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func dump(args []string) error {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	fs.Parse(args)
	for _, path := range fs.Args() {
		block, err := pacs.LoadPrimitiveBlockFile(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Printf("%s: %d primitives\n", path, len(block.Primitives))
		for i, p := range block.Primitives {
			shape := fmt.Sprintf("r=%g", p.Radius)
			if p.Kind == pacs.Box {
				shape = fmt.Sprintf("%gx%g", p.Length[0], p.Length[1])
			}
			fmt.Printf("  %3d %-8s %-10s h=%g at %v yaw=%g reaction=%s trigger=%q\n",
				i, p.Kind, shape, p.Height, p.Position, p.Orientation, p.Reaction, p.Trigger)
		}
	}
	return nil
}

func check(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	maxSize := fs.Float64("max-size", 0, "reject primitives larger than this (0 disables)")
	fs.Parse(args)

	g := errgroup.Group{}
	for _, path := range fs.Args() {
		path := path
		g.Go(func() error {
			block, err := pacs.LoadPrimitiveBlockFile(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if *maxSize > 0 {
				if err := block.Validate(*maxSize); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Printf("%d blocks ok\n", fs.NArg())
	return nil
}

func parseVec(s string) (mgl64.Vec3, error) {
	var v mgl64.Vec3
	fields := strings.Split(s, ",")
	if len(fields) < 2 || len(fields) > 3 {
		return v, fmt.Errorf("bad vector %q, want x,y[,z]", s)
	}
	for i, f := range fields {
		x, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return v, fmt.Errorf("bad vector %q: %w", s, err)
		}
		v[i] = x
	}
	return v, nil
}

// simulate loads a block in a static slot and drives a test cylinder through
// it in a dynamic slot.
func simulate(args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	configPath := fs.String("config", "", "container config (yaml)")
	blockPath := fs.String("block", "", "primitive block loaded in the static slot")
	steps := fs.Int("steps", 100, "evaluations")
	dt := fs.Float64("dt", 0.1, "delta time of an evaluation")
	from := fs.String("from", "0,0", "cylinder start")
	speed := fs.String("speed", "1,0", "cylinder speed")
	radius := fs.Float64("radius", 0.5, "cylinder radius")
	terrain := fs.Bool("terrain", false, "move over a flat terrain covering the bounds")
	verbose := fs.Bool("v", false, "debug logs")
	fs.Parse(args)

	log := newLogger(*verbose)
	defer log.Sync()

	cfg := pacs.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = pacs.LoadConfig(*configPath); err != nil {
			return err
		}
	}
	if cfg.WorldImages < 2 {
		cfg.WorldImages = 2
	}
	start, err := parseVec(*from)
	if err != nil {
		return err
	}
	velocity, err := parseVec(*speed)
	if err != nil {
		return err
	}

	var c *pacs.MoveContainer
	if *terrain {
		c, err = pacs.NewMoveContainerForRetriever(pacs.NewFlatTerrain(cfg.Bounds.BB()), cfg, pacs.WithLogger(log))
	} else {
		c, err = pacs.NewMoveContainer(cfg, pacs.WithLogger(log))
	}
	if err != nil {
		return err
	}
	const staticSlot, moverSlot = 0, 1
	if err := c.SetAsStatic(staticSlot); err != nil {
		return err
	}
	if *blockPath != "" {
		if _, err := c.LoadCollisionablePrimitiveBlock(*blockPath, pacs.Slots(staticSlot), 0, mgl64.Vec3{}); err != nil {
			return err
		}
	}

	mover, err := c.AddPrimitive(pacs.NewCylinderDesc(*radius, 2), pacs.Slots(moverSlot))
	if err != nil {
		return err
	}
	if err := c.InsertInWorldImage(mover, moverSlot, start, 0); err != nil {
		return err
	}

	for step := 0; step < *steps; step++ {
		if err := c.SetSpeed(mover, moverSlot, velocity); err != nil {
			return err
		}
		if err := c.EvalCollision(*dt, moverSlot); err != nil {
			return err
		}
		for i := 0; i < c.NumCollisionInfo(); i++ {
			info := c.CollisionInfo(i)
			log.Info("contact",
				zap.Int("step", step),
				zap.Float64("time", info.ContactTime),
				zap.Uint32("primitive", uint32(info.Primitive1)),
				zap.Bool("terrain", info.Terrain),
				zap.Stringer("normal", info.ContactNormal0))
		}
		if velocity, err = c.Speed(mover, moverSlot); err != nil {
			return err
		}
	}

	pos, err := c.FinalPosition(mover, moverSlot)
	if err != nil {
		return err
	}
	fmt.Printf("mover at %.3f,%.3f,%.3f speed %.3f,%.3f\n", pos[0], pos[1], pos[2], velocity[0], velocity[1])
	return nil
}
