// Command bench compares the disk-resident B+ Tree against a Pebble-backed
// LSM index across a sweep of cache sizes, writing both a CSV of raw
// measurements and a PNG chart of insert latency vs. cache size.
package main

import (
	"encoding/csv"
	"flag"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot/plotter"

	"github.com/dbcore/bptreeindex/internal/bptree"
	"github.com/dbcore/bptreeindex/internal/lsmindex"
	"github.com/dbcore/bptreeindex/internal/page"
)

type structureConfig struct {
	name    string
	factory func(dir string, cacheFrames int) (benchIndex, error)
}

func main() {
	outDir := flag.String("out", "bench-results", "directory to write the CSV and chart into")
	scale := flag.Int("scale", 200_000, "number of keys to load before running workloads")
	csvName := flag.String("csv", "results.csv", "CSV file name, written under -out")
	chartName := flag.String("chart", "latency.png", "chart file name, written under -out")
	flag.Parse()

	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.WithError(err).Fatal("bench: create output directory")
	}

	f, err := os.Create(filepath.Join(*outDir, *csvName))
	if err != nil {
		log.WithError(err).Fatal("bench: create results csv")
	}
	defer f.Close()
	w := csv.NewWriter(f)
	_ = w.Write([]string{"Structure", "Config", "TestType", "LatencyNs", "MemMB", "HeapObjects"})

	cacheSweep := []int{64, 256, 1024}
	structures := []structureConfig{
		{name: "BPlusTree", factory: openBPlusTree},
		{name: "LSM", factory: openLSM},
	}

	var series []plotSeries
	for _, sc := range structures {
		pts := make(plotter.XYs, 0, len(cacheSweep))
		for _, cacheFrames := range cacheSweep {
			dir, err := os.MkdirTemp(*outDir, sc.name+"-*")
			if err != nil {
				log.WithError(err).Fatal("bench: create scratch dir")
			}
			log.WithFields(logrus.Fields{"structure": sc.name, "cacheFrames": cacheFrames}).Info("running suite")

			latencyNs := runSuite(w, sc.name, cacheFrames, sc.factory, dir, *scale, log)
			pts = append(pts, plotter.XY{X: float64(cacheFrames), Y: float64(latencyNs)})

			_ = os.RemoveAll(dir)
		}
		series = append(series, plotSeries{name: sc.name, points: pts})
	}
	w.Flush()

	chartPath := filepath.Join(*outDir, *chartName)
	if err := renderLatencyChart(chartPath, series); err != nil {
		log.WithError(err).Fatal("bench: render chart")
	}
	log.WithFields(logrus.Fields{"csv": *csvName, "chart": *chartName}).Info("benchmark complete")
}

// openBPlusTree opens a fresh B+ Tree index inside dir with a pager cache of
// cacheFrames pages. bptree.Open takes a relative index file name, so the
// scratch dir is entered for the duration of the call.
func openBPlusTree(dir string, cacheFrames int) (benchIndex, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	if err := os.Chdir(dir); err != nil {
		return nil, err
	}
	defer os.Chdir(wd)
	idx, _, err := bptree.Open("bench", 4, page.Integer, cacheFrames, nil)
	if err != nil {
		return nil, err
	}
	return bptreeAdapter{idx: idx}, nil
}

// openLSM opens a Pebble index inside dir. cacheFrames has no effect on it;
// Pebble runs with its own default cache.
func openLSM(dir string, _ int) (benchIndex, error) {
	idx, err := lsmindex.Open(filepath.Join(dir, "pebble"))
	if err != nil {
		return nil, err
	}
	return lsmAdapter{idx: idx}, nil
}

func runSuite(w *csv.Writer, name string, cacheFrames int, factory func(string, int) (benchIndex, error), dir string, n int, log *logrus.Logger) int64 {
	idx, err := factory(dir, cacheFrames)
	if err != nil {
		log.WithError(err).Fatalf("bench: open %s", name)
	}
	defer idx.Close()

	conf := strconv.Itoa(cacheFrames)

	start := time.Now()
	for k := 0; k < n; k++ {
		if err := idx.InsertEntry(int32(k), page.RecordID{PageNum: uint32(k) + 1}); err != nil {
			log.WithError(err).Fatalf("bench: insert into %s", name)
		}
	}
	insertLatency := time.Since(start).Nanoseconds() / int64(n)

	stats := GetDetailedMem()
	Record(w, BenchResult{Name: name, Config: conf, Operation: "Footprint_SteadyState", LatencyNs: insertLatency, MemMB: stats.AllocMB, Objects: stats.HeapObjects})

	start = time.Now()
	ExecuteWorkload(idx, OLTP, n/10, n)
	Record(w, BenchResult{Name: name, Config: conf, Operation: "Workload_OLTP", LatencyNs: time.Since(start).Nanoseconds() / int64(n/10), MemMB: GetDetailedMem().AllocMB})

	start = time.Now()
	ExecuteWorkload(idx, OLAP, n/10, n)
	Record(w, BenchResult{Name: name, Config: conf, Operation: "Workload_OLAP", LatencyNs: time.Since(start).Nanoseconds() / int64(n/10), MemMB: GetDetailedMem().AllocMB})

	start = time.Now()
	ExecuteWorkload(idx, Reporting, 100, n)
	Record(w, BenchResult{Name: name, Config: conf, Operation: "Workload_Range", LatencyNs: time.Since(start).Nanoseconds() / 100, MemMB: GetDetailedMem().AllocMB})

	return insertLatency
}
