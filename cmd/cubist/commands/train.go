/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: train.go
Description: The train command. Fits a model on a CSV file and writes the snapshot.
*/

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/kleascm/cubist-go/pkg/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// RunTrain fits a model and saves it
func RunTrain(cmd *cobra.Command, args []string) error {
	logger, err := SetupLogging()
	if err != nil {
		return err
	}
	defer logger.Close()

	dataPath, _ := cmd.Flags().GetString("data")
	target, _ := cmd.Flags().GetString("target")
	weights, _ := cmd.Flags().GetString("weights")
	categorical, _ := cmd.Flags().GetStringSlice("categorical")
	out, _ := cmd.Flags().GetString("out")

	params := ParamsFromViper()
	estimator, err := NewEstimator(logger, params)
	if err != nil {
		return err
	}

	features, y, w, err := LoadTable(dataPath, target, weights, categorical)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	if err := estimator.Fit(ctx, features, y, w); err != nil {
		return fmt.Errorf("training failed: %w", err)
	}
	state, err := estimator.State()
	if err != nil {
		return err
	}
	logger.LogTraining(state.ID, features.Rows(), len(state.Description.Committees),
		state.Description.RuleCount(), time.Since(start), logrus.Fields{"seed": state.Seed})

	snap, err := estimator.Snapshot()
	if err != nil {
		return err
	}
	if err := storage.Save(out, snap); err != nil {
		return err
	}
	logger.GetLogger().WithField("path", out).Info("Snapshot saved")

	return WriteMetrics()
}
