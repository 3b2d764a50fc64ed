package gnuplot

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"ns2pp/internal/logger"
	"ns2pp/pkg/models"
)

// Config configures the .dat and gnuplot script writer.
type Config struct {
	Dir       string
	Prefix    string
	EventCode string
	// Generator is named in the script's header comment.
	Generator string
}

// Writer writes one .dat file per series and a gnuplot script plotting all of them.
type Writer struct {
	cfg Config
}

// NewWriter creates a writer, creating the output directory if needed.
func NewWriter(cfg Config) (*Writer, error) {
	if cfg.Prefix == "" {
		return nil, fmt.Errorf("output prefix is empty")
	}
	if cfg.Dir == "" {
		cfg.Dir = "."
	}
	if cfg.Generator == "" {
		cfg.Generator = "ns2pp"
	}
	if cfg.Dir != "." {
		if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	return &Writer{cfg: cfg}, nil
}

// DataFileName returns the .dat file name of a series.
func DataFileName(prefix, eventCode string, key models.SeriesKey) string {
	return fmt.Sprintf("%s_%s_flow-%d_node-%d.dat", prefix, eventCode, key.FlowID, key.Node)
}

// ScriptFileName returns the gnuplot script file name.
func ScriptFileName(prefix string) string {
	return prefix + "_plot.gp"
}

// WriteSeries writes every series and then the script. The script is written
// even for an empty store.
func (w *Writer) WriteSeries(store *models.SeriesStore) error {
	err := store.Each(func(_ int, series *models.Series) error {
		return w.writeData(series)
	})
	if err != nil {
		return err
	}
	return w.writeScript(store)
}

func (w *Writer) writeData(series *models.Series) error {
	name := DataFileName(w.cfg.Prefix, w.cfg.EventCode, series.Key)
	return w.create(name, func(out *bufio.Writer) error {
		for _, s := range series.Samples {
			if _, err := fmt.Fprintf(out, "%s\t%s\n", FormatFloat(s.Time), FormatFloat(s.Mbps)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (w *Writer) writeScript(store *models.SeriesStore) error {
	total := store.Len()
	return w.create(ScriptFileName(w.cfg.Prefix), func(out *bufio.Writer) error {
		fmt.Fprintf(out, "# gnuplot script auto generated by %s\n", w.cfg.Generator)
		out.WriteString("set grid\n")
		out.WriteString("set style data lines\n")
		fmt.Fprintf(out, "do for [i=1:%d] { set style line i linewidth 2 }\n", total)
		out.WriteString("set ylabel \"Bandwidth (Mbps)\"\n")
		out.WriteString("set xlabel \"Time (s)\"\n")
		out.WriteString("plot \\\n")

		err := store.Each(func(i int, series *models.Series) error {
			_, err := fmt.Fprintf(out, "    %q title %q ls %d",
				DataFileName(w.cfg.Prefix, w.cfg.EventCode, series.Key), series.Key.Label(), i+1)
			if err != nil {
				return err
			}
			if i+1 < total {
				_, err = out.WriteString(", \\\n")
			} else {
				_, err = out.WriteString("\n")
			}
			return err
		})
		if err != nil {
			return err
		}
		_, err = out.WriteString("pause -1")
		return err
	})
}

func (w *Writer) create(name string, fill func(out *bufio.Writer) error) error {
	path := filepath.Join(w.cfg.Dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	out := bufio.NewWriter(f)
	if err := fill(out); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := out.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	logger.Debugf("Wrote %s", path)
	return nil
}

// Close is a no-op; files are closed as they are written.
func (w *Writer) Close() error {
	return nil
}
