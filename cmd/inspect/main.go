package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"

	"mocap-retarget/internal/capture"
	"mocap-retarget/internal/mathutil"
	"mocap-retarget/internal/retarget"
	"mocap-retarget/internal/skeleton"
	"mocap-retarget/internal/store"
)

func main() {
	dbPath := flag.String("db", "", "List recordings in this SQLite store")
	recording := flag.String("recording", "", "Summarise this recording from -db")
	flag.Parse()

	switch {
	case *dbPath != "" && *recording == "":
		if err := listRecordings(*dbPath); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		return
	case *dbPath != "":
		s, err := store.Open(*dbPath)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		frames, err := s.LoadRecording(context.Background(), *recording)
		s.Close()
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		summarise(*recording, frames)
		return
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: inspect capture.jsonl | inspect -db recordings.db [-recording name]")
		os.Exit(2)
	}
	path := flag.Arg(0)
	f, err := os.Open(path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	frames, err := capture.ReadAll(f)
	f.Close()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	summarise(path, frames)
}

func listRecordings(dbPath string) error {
	s, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()
	list, err := s.ListRecordings(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("Recordings: %d\n", len(list))
	for _, r := range list {
		fmt.Printf("  %-24s frames=%-6d created=%s\n", r.Name, r.FrameCount, r.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func summarise(name string, frames []skeleton.Frame) {
	fmt.Printf("%s: %d frames\n", name, len(frames))
	if len(frames) == 0 {
		return
	}
	first, last := frames[0], frames[len(frames)-1]
	fmt.Printf("  Index: %d..%d, Time: %v..%v\n", first.Index, last.Index, first.Timestamp, last.Timestamp)

	// Joint coverage
	seen := map[skeleton.JointID]int{}
	oriented := 0
	for _, f := range frames {
		for j, s := range f.Joints {
			seen[j]++
			if s.HasOrientation {
				oriented++
			}
		}
	}
	fmt.Printf("  Joint samples with orientation: %d\n", oriented)
	for _, j := range skeleton.AllJoints() {
		if n := seen[j]; n != len(frames) {
			fmt.Printf("    %-15s present in %d/%d frames\n", j, n, len(frames))
		}
	}

	// Frames the default table can retarget
	engine := retarget.NewEngine(skeleton.DefaultHierarchy(), 1)
	invalid := 0
	for _, f := range frames {
		if engine.Check(f) != nil {
			invalid++
		}
	}
	fmt.Printf("  Incomplete for default skeleton: %d\n", invalid)

	// Root travel
	minP := mathutil.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	maxP := mathutil.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	var path float64
	var prev mathutil.Vec3
	havePrev := false
	for _, f := range frames {
		s, ok := f.Joint(skeleton.HipCenter)
		if !ok {
			continue
		}
		p := s.Position
		for k := 0; k < 3; k++ {
			minP[k] = math.Min(minP[k], p[k])
			maxP[k] = math.Max(maxP[k], p[k])
		}
		if havePrev {
			path += p.Sub(prev).Len()
		}
		prev, havePrev = p, true
	}
	if !havePrev {
		fmt.Println("  Root: never tracked")
		return
	}
	fmt.Printf("  Root BBox: X[%.3f, %.3f] Y[%.3f, %.3f] Z[%.3f, %.3f]\n", minP[0], maxP[0], minP[1], maxP[1], minP[2], maxP[2])
	fmt.Printf("  Root path length: %.3f\n", path)
}
