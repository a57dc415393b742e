package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"spritegrid/internal/config"
	"spritegrid/internal/grid"
	"spritegrid/internal/logging"
	"spritegrid/internal/metrics"
	"spritegrid/internal/pool"
	"spritegrid/internal/texture"
)

func simulateCmd(s *settings) *cobra.Command {
	var (
		script    string
		slots     int
		cells     bool
		retention int
	)

	cmd := &cobra.Command{
		Use:   "simulate <dir>",
		Short: "Drive pooled sheets through animated slots",
		Long: `simulate indexes the sprite sheets under <dir> and runs a script of
slot assignments against a shared grid pool.

Script tokens, separated by spaces:
  S:N    assign sheet N (sorted by name) to slot S
  S:-    release slot S
  tick   advance every slot by one frame
  purge  evict every retained grid from the pool

Only sheets sliced into a 2x2 layout are accepted by the slots.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := s.cfg
			cfg.TextureDir = args[0]
			if cmd.Flags().Changed("retention") {
				cfg.Retention = &retention
			}

			reg := prometheus.NewRegistry()
			sim, err := newSimulation(cfg, slots, cells, reg, os.Stdout)
			if err != nil {
				return err
			}
			if script == "" {
				script = defaultScript(len(sim.names), slots)
			}

			if err := sim.run(script); err != nil {
				return err
			}
			return printMetrics(os.Stdout, reg)
		},
	}

	cmd.Flags().StringVar(&script, "script", "", "Assignment script (default: cycle every sheet through the slots)")
	cmd.Flags().IntVar(&slots, "slots", 4, "Number of slots")
	cmd.Flags().BoolVar(&cells, "cells", false, "Slots hold one-cell selections instead of animating whole grids")
	cmd.Flags().IntVar(&retention, "retention", 0, "Pool retention capacity (default: 20)")

	return cmd
}

// simulation ties a sheet cache, a grid pool and a row of slots together.
type simulation struct {
	names  []string
	layout grid.Spec
	cache  *texture.Cache
	pool   *pool.Pool[string]
	slots  []slot
	labels map[uuid.UUID]string
	out    io.Writer
	log    *zap.Logger
}

func newSimulation(cfg config.Config, slots int, cells bool, reg prometheus.Registerer, out io.Writer) (*simulation, error) {
	if slots <= 0 {
		return nil, fmt.Errorf("simulate: need at least one slot, got %d", slots)
	}

	index := texture.BuildIndex(cfg.TextureDir)
	if index.Len() == 0 {
		return nil, fmt.Errorf("simulate: no sheets under %s", cfg.TextureDir)
	}
	names := index.Names()
	sort.Strings(names)

	collector := metrics.NewPoolCollector(metrics.WithRegistry(reg))
	sim := &simulation{
		names:  names,
		layout: layoutOf(cfg),
		cache:  texture.NewCache(index),
		pool: pool.New[string](
			pool.WithName("sheets"),
			pool.WithRetention(cfg.PoolRetention()),
			pool.WithObserver(collector),
		),
		labels: make(map[uuid.UUID]string),
		out:    out,
		log:    logging.Logger(),
	}

	q := quad{frameWidth: cfg.FrameWidth, frameHeight: cfg.FrameHeight}
	for i := 0; i < slots; i++ {
		if cells {
			sim.slots = append(sim.slots, newPicker(q))
		} else {
			sim.slots = append(sim.slots, newAnimator(q))
		}
	}

	fmt.Fprintf(out, "Sheets: %d indexed, Slots: %d, Retention: %d\n",
		len(names), slots, sim.pool.Retention())
	for i, name := range names {
		fmt.Fprintf(out, "  %d: %s\n", i, name)
	}
	fmt.Fprintln(out, "------------------------------------------------------------")
	return sim, nil
}

// sheet returns the pooled grid for the idx-th sheet.
func (sim *simulation) sheet(idx int) (*grid.Grid, error) {
	if idx < 0 || idx >= len(sim.names) {
		return nil, fmt.Errorf("simulate: sheet %d outside 0..%d", idx, len(sim.names)-1)
	}
	name := sim.names[idx]
	g, err := sim.pool.Get(name, sim.cache.Factory(name, sim.layout))
	if err != nil {
		return nil, err
	}
	sim.labels[g.ID()] = name
	return g, nil
}

func (sim *simulation) run(script string) error {
	for _, tok := range strings.Fields(script) {
		if err := sim.step(tok); err != nil {
			return fmt.Errorf("simulate: %s: %w", tok, err)
		}
		sim.report(tok)
	}
	return nil
}

func (sim *simulation) step(tok string) error {
	switch tok {
	case "tick":
		for _, s := range sim.slots {
			s.Tick()
		}
		return nil
	case "purge":
		sim.pool.Purge()
		return nil
	}

	slotStr, target, ok := strings.Cut(tok, ":")
	if !ok {
		return fmt.Errorf("unknown token")
	}
	i, err := strconv.Atoi(slotStr)
	if err != nil || i < 0 || i >= len(sim.slots) {
		return fmt.Errorf("slot must be 0..%d", len(sim.slots)-1)
	}
	s := sim.slots[i]

	if target == "-" {
		s.Clear()
		return nil
	}
	idx, err := strconv.Atoi(target)
	if err != nil {
		return fmt.Errorf("sheet must be a number or '-'")
	}
	g, err := sim.sheet(idx)
	if err != nil {
		return err
	}
	if err := s.Assign(g, i); err != nil {
		// A rejected sheet leaves the slot empty; keep going.
		sim.log.Warn("slot rejected sheet",
			zap.Int("slot", i),
			zap.String("sheet", sim.names[idx]),
			zap.Error(err))
		fmt.Fprintf(sim.out, "  slot %d rejected %s: %v\n", i, sim.names[idx], err)
	}
	return nil
}

// frameLabel names what a slot currently shows.
func (sim *simulation) frameLabel(sv *grid.SubView) string {
	if sv == nil {
		return "-"
	}
	return fmt.Sprintf("%s[%d,%d]", sim.labels[sv.Grid().ID()], sv.Row(), sv.Column())
}

func (sim *simulation) report(tok string) {
	labels := make([]string, len(sim.slots))
	for i, s := range sim.slots {
		labels[i] = sim.frameLabel(s.Frame())
	}
	st := sim.pool.Stats()
	fmt.Fprintf(sim.out, "%-6s %s | held=%d retained=%d loaded=%d\n",
		tok, strings.Join(labels, " "), st.Held, st.Retained, sim.cache.Loaded())
}

// defaultScript assigns every sheet to a slot in turn, ticks through a full
// animation cycle and releases everything.
func defaultScript(sheets, slots int) string {
	var b strings.Builder
	for i := 0; i < sheets; i++ {
		fmt.Fprintf(&b, "%d:%d ", i%slots, i)
		if i%slots == slots-1 || i == sheets-1 {
			b.WriteString("tick tick tick tick ")
		}
	}
	for i := 0; i < slots; i++ {
		fmt.Fprintf(&b, "%d:- ", i)
	}
	return strings.TrimSpace(b.String())
}

// printMetrics writes every gathered family in the text exposition format.
func printMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("metrics: gather: %w", err)
	}
	fmt.Fprintln(w, "------------------------------------------------------------")
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("metrics: write %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
