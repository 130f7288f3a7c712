package main

import (
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/veandco/go-sdl2/sdl"
	"gonum.org/v1/plot/vg"

	"github.com/blelem/acfscope/acf"
	"github.com/blelem/acfscope/http"
	"github.com/blelem/acfscope/render"
	"github.com/blelem/acfscope/replica"
	"github.com/blelem/acfscope/session"
)

var (
	freqMax    float64
	codeMax    float64
	resolution int

	tpMs       float64
	mpStrength float64
	mpFreq     float64
	mpCode     float64
	mpPhase    float64

	crossFreq float64
	crossCode float64
	palette   string

	serveAddr string
	noServer  bool
	outDir    string

	gaussMean  float64
	gaussSigma float64
	gaussOut   string

	prn            int
	samplesPerChip int

	viewScale int
)

var rootCmd = &cobra.Command{
	Use:   "acfscope",
	Short: "Explore the autocorrelation of a BPSK signal under two-ray multipath.",
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.Float64Var(&freqMax, "freq-max", 150, "Frequency axis half range in Hz")
	pf.Float64Var(&codeMax, "code-max", 1.5, "Code delay axis half range in chips")
	pf.IntVarP(&resolution, "resolution", "n", 250, "Grid points per axis")
	pf.Float64Var(&tpMs, "tp", 10, "Coherent integration time in ms")
	pf.Float64Var(&mpStrength, "mp-strength", 1, "Multipath relative amplitude")
	pf.Float64Var(&mpFreq, "mp-freq", 100, "Multipath frequency offset in Hz")
	pf.Float64Var(&mpCode, "mp-code", 0.5, "Multipath code offset in chips")
	pf.Float64Var(&mpPhase, "mp-phase", math.Pi, "Multipath phase offset in rad")
	pf.Float64Var(&crossFreq, "crosshair-freq", 0, "Initial crosshair frequency in Hz")
	pf.Float64Var(&crossCode, "crosshair-code", 0, "Initial crosshair code delay in chips")
	pf.StringVar(&palette, "palette", "turbo", "Heatmap colormap (turbo, waterfall)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive dashboard over http",
		Run:   func(cmd *cobra.Command, args []string) { serveCmd() },
	}
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", ":8080", "Address to listen on")
	serveCmd.Flags().BoolVar(&noServer, "no-server", false, "Render the dashboard plots once and exit")
	serveCmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory for --no-server")
	rootCmd.AddCommand(serveCmd)

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Write the heatmap and slice plots as PNG",
		Run:   func(cmd *cobra.Command, args []string) { renderCmd() },
	}
	renderCmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory")
	rootCmd.AddCommand(renderCmd)

	gaussianCmd := &cobra.Command{
		Use:   "gaussian",
		Short: "Plot a filled gaussian curve",
		Run:   func(cmd *cobra.Command, args []string) { gaussianCmd() },
	}
	gaussianCmd.Flags().Float64Var(&gaussMean, "mean", render.DefaultGaussian.Mean, "Mean")
	gaussianCmd.Flags().Float64Var(&gaussSigma, "sigma", render.DefaultGaussian.Sigma, "Standard deviation")
	gaussianCmd.Flags().StringVarP(&gaussOut, "out", "o", "gaussian.png", "Output PNG")
	rootCmd.AddCommand(gaussianCmd)

	codeCmd := &cobra.Command{
		Use:   "code",
		Short: "Measure a GPS L1 C/A code autocorrelation against the triangle",
		Run:   func(cmd *cobra.Command, args []string) { codeCmd() },
	}
	codeCmd.Flags().IntVarP(&prn, "prn", "p", 1, "Satellite PRN (1-37)")
	codeCmd.Flags().IntVarP(&samplesPerChip, "samples-per-chip", "s", 4, "Samples per chip")
	rootCmd.AddCommand(codeCmd)

	viewCmd := &cobra.Command{
		Use:   "view",
		Short: "Interactive SDL window",
		Run:   func(cmd *cobra.Command, args []string) { viewCmd() },
	}
	viewCmd.Flags().IntVarP(&viewScale, "scale", "s", 2, "Heatmap pixels per grid point")
	rootCmd.AddCommand(viewCmd)
}

func flagParams() session.Params {
	return session.Params{
		IntegrationTime: tpMs * 1e-3,
		Multipath: acf.Multipath{
			Strength:   mpStrength,
			FreqOffset: mpFreq,
			CodeOffset: mpCode,
			Phase:      mpPhase,
		},
	}
}

// newSession builds the grid and session described by the global flags.
func newSession() (*session.Session, render.Colormap) {
	g, err := acf.MakeGrid(freqMax, codeMax, resolution)
	if err != nil {
		log.Fatalf("grid: %v", err)
	}
	s, err := session.New(g, flagParams(), crossFreq, crossCode)
	if err != nil {
		log.Fatalf("params: %v", err)
	}
	cm, err := render.ColormapByName(palette)
	if err != nil {
		log.Fatal(err)
	}
	return s, cm
}

func writePlots(s *session.Session, cm render.Colormap, dir string) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatal(err)
	}
	paths, err := render.WritePlots(s.View(), s.Grid(), dir, cm)
	if err != nil {
		log.Fatal(err)
	}
	for _, p := range paths {
		log.Println("wrote", p)
	}
}

func serveCmd() {
	s, cm := newSession()
	if noServer {
		writePlots(s, cm, outDir)
		return
	}
	log.Printf("serving dashboard on %s", serveAddr)
	if err := http.ServeHttp(s, cm, serveAddr); err != nil {
		log.Fatal(err)
	}
}

func renderCmd() {
	s, cm := newSession()
	writePlots(s, cm, outDir)
}

func gaussianCmd() {
	g := render.Gaussian{Mean: gaussMean, Sigma: gaussSigma}
	if dir := filepath.Dir(gaussOut); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatal(err)
		}
	}
	f, err := os.Create(gaussOut)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	if err := render.WriteGaussianPNG(f, g, 5*vg.Inch, 3*vg.Inch); err != nil {
		log.Fatal(err)
	}
	log.Println("wrote", gaussOut)
}

func codeCmd() {
	lags, values, err := replica.CodeACF(prn, samplesPerChip)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("# PRN %d, %d samples/chip\n", prn, samplesPerChip)
	fmt.Printf("%10s %10s %10s\n", "lag[chip]", "measured", "triangle")
	for i, lag := range lags {
		if math.Abs(lag) > 2 {
			continue
		}
		fmt.Printf("%10.3f %10.4f %10.4f\n", lag, values[i], acf.Triangle(lag))
	}
}

func viewCmd() {
	if err := sdl.Init(sdl.INIT_TIMER | sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		log.Fatal(err)
	}
	defer sdl.Quit()

	s, cm := newSession()
	aw, err := newACFWindow(s, cm, viewScale)
	if err != nil {
		log.Fatal(err)
	}
	defer aw.Close()
	aw.Run()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
