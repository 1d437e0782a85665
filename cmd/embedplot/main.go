package main

import (
	"fmt"
	"image/color"
	"log"

	"github.com/alexflint/go-arg"
	"github.com/hscells/manifold/config"
	"github.com/hscells/manifold/dataset"
	"github.com/hscells/manifold/embed"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	name    = "embedplot"
	version = "11.Aug.2026"
	author  = "Harry Scells"
)

type args struct {
	Config     string `help:"path to experiment configuration file" arg:"-c"`
	Output     string `help:"path of the output image" arg:"-o"`
	Neighbours int    `help:"neighbourhood size of the embedding" arg:"-k"`
}

func (args) Version() string {
	return version
}

func (args) Description() string {
	return fmt.Sprintf(`%s
@ %s
# %s`, name, author, version)
}

var palette = []color.Color{
	color.RGBA{R: 31, G: 119, B: 180, A: 255},
	color.RGBA{R: 255, G: 127, B: 14, A: 255},
	color.RGBA{R: 44, G: 160, B: 44, A: 255},
	color.RGBA{R: 214, G: 39, B: 40, A: 255},
	color.RGBA{R: 148, G: 103, B: 189, A: 255},
}

func main() {
	var args args
	arg.MustParse(&args)
	if args.Output == "" {
		args.Output = "embedding.png"
	}

	cfg, err := config.Load(args.Config)
	if err != nil {
		panic(err)
	}
	e := cfg.Experiment()

	log.Println("generating dataset...")
	ds, err := dataset.Generate(e.Dataset)
	if err != nil {
		panic(err)
	}

	ecfg := e.Embedding.Base
	ecfg.Components = 2
	if args.Neighbours > 0 {
		ecfg.Neighbours = args.Neighbours
	}

	log.Println("fitting embedding...")
	u := embed.New(ecfg)
	if err := u.Fit(ds.X); err != nil {
		panic(err)
	}
	embedding, err := u.Transform(ds.X)
	if err != nil {
		panic(err)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s (%s)", cfg.Name, ecfg)
	p.X.Label.Text = "component 1"
	p.Y.Label.Text = "component 2"

	byClass := make(map[int]plotter.XYs)
	for i, label := range ds.Y {
		byClass[int(label)] = append(byClass[int(label)], plotter.XY{
			X: embedding.At(i, 0),
			Y: embedding.At(i, 1),
		})
	}
	for label := 0; label < len(byClass); label++ {
		s, err := plotter.NewScatter(byClass[label])
		if err != nil {
			panic(err)
		}
		s.GlyphStyle.Color = palette[label%len(palette)]
		s.GlyphStyle.Radius = vg.Points(2)
		p.Add(s)
		p.Legend.Add(fmt.Sprintf("class %d", label), s)
	}

	if err := p.Save(6*vg.Inch, 6*vg.Inch, args.Output); err != nil {
		panic(err)
	}
	log.Printf("wrote %s\n", args.Output)
}
