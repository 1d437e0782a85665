package main

import (
	"fmt"
	"log"

	"github.com/alexflint/go-arg"
	"github.com/go-errors/errors"
	"github.com/hscells/manifold"
	"github.com/hscells/manifold/config"
	"github.com/hscells/manifold/eval"
	"github.com/hscells/manifold/output"
)

var (
	name    = "manifold"
	version = "11.Aug.2026"
	author  = "Harry Scells"
)

type args struct {
	Config   string `help:"path to experiment configuration file" arg:"-c"`
	Cache    string `help:"directory for caching model scores between runs" arg:"-d"`
	Format   string `help:"format of the evaluation output (report/json)" arg:"-f"`
	Progress bool   `help:"show a progress bar during grid search" arg:"-p"`
}

func (args) Version() string {
	return version
}

func (args) Description() string {
	return fmt.Sprintf(`%s
@ %s
# %s`, name, author, version)
}

func main() {
	var args args
	arg.MustParse(&args)

	cfg, err := config.Load(args.Config)
	if err != nil {
		panic(err)
	}

	var formatter output.EvaluationFormatter
	switch args.Format {
	case "", "report":
		formatter = output.AccuracyReportFormatter(manifold.ModelRaw, manifold.ModelUMAP)
	case "json":
		formatter = output.JSONEvaluationFormatter
	default:
		panic(errors.New("unrecognised output format"))
	}

	e := cfg.Experiment()
	e.Evaluators = []eval.Evaluator{eval.Accuracy, eval.Precision, eval.Recall, eval.F1}
	e.Formatters = []output.EvaluationFormatter{formatter}
	e.Progress = args.Progress
	if args.Cache != "" {
		e.ScoreCache = manifold.NewDiskvScoreCache(args.Cache)
	}

	c := make(chan manifold.Result)
	go e.Execute(c)
	for result := range c {
		switch result.Type {
		case manifold.Selection:
			log.Printf("selected %s for the %s model (cross-validation accuracy %.3f)\n", result.Selection.Name, result.Model, result.Selection.Mean)
		case manifold.Evaluation:
			for _, formatted := range result.Evaluations {
				fmt.Println(formatted)
			}
		case manifold.Error:
			log.Fatalln(result.Error)
		}
	}
}
