// Package svm provides a linear maximum-margin classifier backed by libsvm.
package svm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"

	libSvm "github.com/ewalker544/libsvm-go"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Config is one classifier configuration. C is the regularisation strength.
type Config struct {
	C float64
}

// String names the configuration for grid-search reporting.
func (c Config) String() string {
	return "C=" + strconv.FormatFloat(c.C, 'g', -1, 64)
}

// Grid is the set of candidate regularisation strengths searched over.
type Grid struct {
	C []float64
}

// Validate fails fast on malformed grids, before any fitting happens.
func (g Grid) Validate() error {
	if len(g.C) == 0 {
		return errors.New("svm: grid contains no candidate values for C")
	}
	for _, c := range g.C {
		if c <= 0 {
			return errors.Errorf("svm: regularisation strength must be positive, got %v", c)
		}
	}
	return nil
}

// Configs enumerates the grid into concrete configurations.
func (g Grid) Configs() []Config {
	configs := make([]Config, len(g.C))
	for i, c := range g.C {
		configs[i] = Config{C: c}
	}
	return configs
}

// Classifier is a linear support-vector classifier. Fit trains a C-SVC
// with a linear kernel on a serialised LIBSVM problem; Predict classifies
// one row at a time against the trained model.
type Classifier struct {
	cfg   Config
	model *libSvm.Model
	dims  int
}

// New creates an unfitted classifier from a configuration.
func New(cfg Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// Fit trains the classifier. The training matrix is written to a temporary
// LIBSVM-format problem file which is removed once the model is trained.
// Solver errors (including non-convergence) propagate to the caller.
func (c *Classifier) Fit(X *mat.Dense, y []float64) error {
	n, p := X.Dims()
	if n == 0 || n != len(y) {
		return errors.Errorf("svm: fit requires one label per sample, got %d samples and %d labels", n, len(y))
	}

	f, err := os.CreateTemp("", "svm-*.features")
	if err != nil {
		return errors.Wrap(err, "svm: creating problem file")
	}
	defer os.Remove(f.Name())

	if err := WriteLibSVM(f, X, y); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "svm: closing problem file")
	}

	param := libSvm.NewParameter()
	param.SvmType = libSvm.C_SVC
	param.KernelType = libSvm.LINEAR
	param.C = c.cfg.C
	param.NumCPU = runtime.NumCPU()
	param.QuietMode = true

	problem, err := libSvm.NewProblem(f.Name(), param)
	if err != nil {
		return errors.Wrap(err, "svm: reading problem file")
	}

	model := libSvm.NewModel(param)
	if err := model.Train(problem); err != nil {
		return errors.Wrap(err, "svm: training")
	}

	c.model = model
	c.dims = p
	return nil
}

// Predict classifies each row of X.
func (c *Classifier) Predict(X *mat.Dense) ([]float64, error) {
	if c.model == nil {
		return nil, errors.New("svm: predict called before fit")
	}
	n, p := X.Dims()
	if p != c.dims {
		return nil, errors.Errorf("svm: trained on %d features, asked to predict on %d", c.dims, p)
	}

	predictions := make([]float64, n)
	x := make(map[int]float64, p)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			x[j+1] = X.At(i, j)
		}
		predictions[i] = c.model.Predict(x)
	}
	return predictions, nil
}

// WriteLibSVM writes the labelled matrix as LIBSVM-format lines: the label
// followed by 1-based index:value pairs.
func WriteLibSVM(w io.Writer, X *mat.Dense, y []float64) error {
	buf := bufio.NewWriter(w)
	n, p := X.Dims()
	for i := 0; i < n; i++ {
		if _, err := fmt.Fprintf(buf, "%v", y[i]); err != nil {
			return errors.Wrap(err, "svm: writing problem file")
		}
		for j := 0; j < p; j++ {
			if _, err := fmt.Fprintf(buf, " %d:%v", j+1, X.At(i, j)); err != nil {
				return errors.Wrap(err, "svm: writing problem file")
			}
		}
		if _, err := buf.WriteString("\n"); err != nil {
			return errors.Wrap(err, "svm: writing problem file")
		}
	}
	return errors.Wrap(buf.Flush(), "svm: flushing problem file")
}
