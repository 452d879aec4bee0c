/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: predict.go
Description: The predict command. Restores a snapshot, scores a CSV file and writes one
prediction per row, logging R² when the observed target is available.
*/

package commands

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/kleascm/cubist-go/pkg/core"
	"github.com/kleascm/cubist-go/pkg/encoding"
	"github.com/kleascm/cubist-go/pkg/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunPredict scores new data with a saved model
func RunPredict(cmd *cobra.Command, args []string) error {
	logger, err := SetupLogging()
	if err != nil {
		return err
	}
	defer logger.Close()

	modelPath, _ := cmd.Flags().GetString("model")
	dataPath, _ := cmd.Flags().GetString("data")
	target, _ := cmd.Flags().GetString("target")
	out, _ := cmd.Flags().GetString("out")

	snap, err := storage.Load(modelPath)
	if err != nil {
		return err
	}

	params := ParamsFromViper()
	if !cmd.Flags().Changed("neighbors") && !viper.IsSet("model.neighbors") {
		params.Neighbors = snap.Neighbors
	}
	estimator, err := NewEstimator(logger, params)
	if err != nil {
		return err
	}
	if err := estimator.Restore(snap); err != nil {
		return err
	}

	var categorical []string
	for _, a := range snap.Schema.Features() {
		if a.Kind == encoding.KindCategorical {
			categorical = append(categorical, a.Name)
		}
	}
	raw, observed, _, err := LoadTable(dataPath, target, "", categorical)
	if err != nil {
		return err
	}
	features, err := encoding.Conform(snap.Schema, raw)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	preds, err := estimator.Predict(ctx, features)
	if err != nil {
		return fmt.Errorf("prediction failed: %w", err)
	}

	fields := logrus.Fields{}
	if observed != nil {
		if r2, err := core.RSquared(preds, observed); err == nil {
			fields["r2"] = r2
		}
	}
	logger.LogPrediction(snap.ID, len(preds), params.Neighbors, time.Since(start), fields)

	var w io.Writer = os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := writePredictions(w, preds); err != nil {
		return err
	}
	return WriteMetrics()
}

func writePredictions(w io.Writer, preds []float64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"prediction"}); err != nil {
		return err
	}
	for _, p := range preds {
		if err := cw.Write([]string{encoding.FormatFloat(p)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
