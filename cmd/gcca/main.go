// --------------------------------------------------------------------------------
// Author: Thomas F McGeehan V
//
// This file is part of a software project developed by Thomas F McGeehan V.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
// For more information about the MIT License, please visit:
// https://opensource.org/licenses/MIT
//
// Acknowledgment appreciated but not required.
// --------------------------------------------------------------------------------

package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/TFMV/gcca/pkg/config"
	"github.com/TFMV/gcca/pkg/db"
	"github.com/TFMV/gcca/pkg/gcca"
	"github.com/TFMV/gcca/pkg/logging"
	"github.com/TFMV/gcca/pkg/plotting"
	"github.com/TFMV/gcca/pkg/report"
)

func main() {
	configPath := flag.String("config", "", "Path to the YAML config file")
	seed := flag.Int64("seed", 42, "Seed for the generated example data")
	csvPaths := flag.String("csv", "", "Comma-separated CSV files to use as data sets instead of generated data")
	flag.Parse()

	if *configPath == "" {
		*configPath = os.Getenv("CONFIG_PATH")
	}
	if *configPath == "" {
		*configPath = "config.yaml"
	}
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	var sets []*mat.Dense
	if *csvPaths != "" {
		for _, p := range strings.Split(*csvPaths, ",") {
			x, err := db.LoadCSVMatrix(p)
			if err != nil {
				logger.Fatal("loading data set", zap.String("path", p), zap.Error(err))
			}
			sets = append(sets, x)
		}
	} else if len(cfg.Data.Queries) > 0 {
		ctx := context.Background()
		pool, err := db.NewConnection(ctx, db.Creds{
			Host:     cfg.DBCreds.Host,
			Port:     cfg.DBCreds.Port,
			Username: cfg.DBCreds.Username,
			Password: cfg.DBCreds.Password,
			Database: cfg.DBCreds.Database,
		})
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		for _, q := range cfg.Data.Queries {
			x, err := db.LoadMatrix(ctx, pool, q)
			if err != nil {
				logger.Fatal("loading data set", zap.String("query", q), zap.Error(err))
			}
			sets = append(sets, x)
		}
	} else {
		rng := rand.New(rand.NewSource(*seed))
		sets = []*mat.Dense{
			randomMatrix(rng, 50, 50),
			randomMatrix(rng, 50, 60),
			randomMatrix(rng, 50, 70),
		}
	}

	model := gcca.New(cfg.GCCA.NComponents, cfg.GCCA.RegParam, gcca.WithLogger(logger))
	if err := model.Fit(sets); err != nil {
		logger.Fatal("fit failed", zap.Error(err))
	}
	if _, err := model.Transform(sets); err != nil {
		logger.Fatal("transform failed", zap.Error(err))
	}

	for _, p := range []string{cfg.Output.ModelPath, cfg.Output.PlotPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			logger.Fatal("creating output directory", zap.Error(err))
		}
	}
	if err := model.Save(cfg.Output.ModelPath); err != nil {
		logger.Fatal("save failed", zap.Error(err))
	}

	restored := gcca.New(0, 0, gcca.WithLogger(logger))
	if err := restored.Load(cfg.Output.ModelPath); err != nil {
		logger.Fatal("load failed", zap.Error(err))
	}
	zs, err := restored.Transform(sets)
	if err != nil {
		logger.Fatal("transform on restored model failed", zap.Error(err))
	}

	if err := plotting.Render(zs, cfg.Output.PlotPath); err != nil {
		logger.Fatal("plot failed", zap.Error(err))
	}
	logger.Info("wrote projection plot", zap.String("path", cfg.Output.PlotPath))

	pairs, err := report.FirstDimCorrelations(zs)
	if err != nil {
		logger.Fatal("correlation report failed", zap.Error(err))
	}
	for _, p := range pairs {
		logger.Info("pairwise correlation", zap.Int("i", p.I), zap.Int("j", p.J), zap.Float64("r", p.R))
	}
}

func randomMatrix(rng *rand.Rand, rows, cols int) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = rng.Float64()
	}
	return mat.NewDense(rows, cols, data)
}
