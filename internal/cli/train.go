package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/happyhackingspace/segtag"
	"github.com/spf13/cobra"
)

func (c *CLI) newTrainCommand() *cobra.Command {
	var configPath string
	flags := segtag.DefaultTrainConfig()

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a segmentation and tagging model on a word_tag corpus",
		Example: `  segtag train --train data/train.txt --dev data/dev.txt --model model/ctb
  segtag train --train data/train.txt --model model/ctb --epochs 20 --shuffle
  segtag train --config train.yaml --epochs 5
  segtag train --train data/train.txt --model model/ctb --dict dict/place.dict --word-keys`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := segtag.DefaultTrainConfig()
			if configPath != "" {
				var err error
				if config, err = segtag.LoadTrainConfig(configPath); err != nil {
					return err
				}
				slog.Debug("Loaded training config", "path", configPath)
			}
			overrideTrainConfig(cmd, &config, flags)
			if config.Train == "" || config.Model == "" {
				return fmt.Errorf("both --train and --model are required")
			}

			slog.Info("Training", "train", config.Train, "dev", config.Dev, "model", config.Model,
				"epochs", config.Epochs, "shuffle", config.Shuffle)
			start := time.Now()
			tg, err := segtag.TrainFiles(context.Background(), config)
			if err != nil {
				return err
			}
			slog.Debug("Training completed", "duration", time.Since(start))
			if err := tg.Save(config.Model); err != nil {
				return err
			}
			slog.Info("Model saved", "prefix", config.Model, "features", tg.Weights().Len(), "tags", len(tg.Tags()))
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML training config; explicitly set flags take precedence")
	cmd.Flags().StringVar(&flags.Train, "train", "", "Training corpus of word_tag tokens")
	cmd.Flags().StringVar(&flags.Dev, "dev", "", "Development corpus evaluated after each epoch")
	cmd.Flags().StringVar(&flags.Model, "model", "", "Output model prefix")
	cmd.Flags().IntVar(&flags.Epochs, "epochs", flags.Epochs, "Number of training epochs")
	cmd.Flags().BoolVar(&flags.Shuffle, "shuffle", false, "Shuffle the training corpus every epoch")
	cmd.Flags().Uint64Var(&flags.Seed, "seed", flags.Seed, "Shuffle seed")
	cmd.Flags().IntVar(&flags.Workers, "workers", flags.Workers, "Goroutines used to evaluate the dev corpus")
	addOptionFlags(cmd, &flags.Options)
	return cmd
}

// addOptionFlags registers the model feature flags.
func addOptionFlags(cmd *cobra.Command, opts *segtag.Options) {
	cmd.Flags().StringSliceVar(&opts.Dicts, "dict", nil, "Gazetteer of \"word category\" lines (repeatable)")
	cmd.Flags().StringSliceVar(&opts.Phrases, "phrase", nil, "Gazetteer of phrases words should not cut through (repeatable)")
	cmd.Flags().StringVar(&opts.Freq, "freq", "", "Word frequency list used as a prior")
	cmd.Flags().BoolVar(&opts.WordKeys, "word-keys", false, "Enable character-class word features")
	cmd.Flags().BoolVar(&opts.NoNormalize, "no-normalize", false, "Disable full-width to half-width folding")
	cmd.Flags().StringSliceVar(&opts.Punctuation, "punct", nil, "Extra characters that always stand alone")
}

// overrideTrainConfig copies the flags the user set explicitly into config.
func overrideTrainConfig(cmd *cobra.Command, config *segtag.TrainConfig, flags segtag.TrainConfig) {
	set := cmd.Flags().Changed
	if set("train") {
		config.Train = flags.Train
	}
	if set("dev") {
		config.Dev = flags.Dev
	}
	if set("model") {
		config.Model = flags.Model
	}
	if set("epochs") {
		config.Epochs = flags.Epochs
	}
	if set("shuffle") {
		config.Shuffle = flags.Shuffle
	}
	if set("seed") {
		config.Seed = flags.Seed
	}
	if set("workers") {
		config.Workers = flags.Workers
	}
	if set("dict") {
		config.Options.Dicts = flags.Options.Dicts
	}
	if set("phrase") {
		config.Options.Phrases = flags.Options.Phrases
	}
	if set("freq") {
		config.Options.Freq = flags.Options.Freq
	}
	if set("word-keys") {
		config.Options.WordKeys = flags.Options.WordKeys
	}
	if set("no-normalize") {
		config.Options.NoNormalize = flags.Options.NoNormalize
	}
	if set("punct") {
		config.Options.Punctuation = flags.Options.Punctuation
	}
}
