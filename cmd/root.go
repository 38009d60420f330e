package cmd

import (
	"github.com/jsphweid/vidstream/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vidstream",
	Short: "Streams videos over HTTP range requests",
	Long:  `Serves a directory of videos so browsers can seek through them with Range requests.`,
}

func Execute() {
	defer log.Sync()
	cobra.CheckErr(rootCmd.Execute())
}
