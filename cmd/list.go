package cmd

import (
	"fmt"

	"github.com/jsphweid/vidstream/constants"
	"github.com/jsphweid/vidstream/file"
	"github.com/spf13/cobra"
)

var listDir string

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVar(&listDir, "dir", constants.GetVideoDir(), "directory of videos (VIDEO_PATH)")
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists the videos that would be served",
	Long:  `Scans the video directory and prints each video with its size and content type.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		library, err := file.NewLibrary(listDir)
		if err != nil {
			return err
		}
		videos, err := library.Scan()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, v := range videos {
			fmt.Fprintf(out, "%v\t%d\t%v\n", v.Name, v.Size, v.ContentType)
		}
		fmt.Fprintf(out, "%d videos in %v\n", len(videos), library.Root())
		return nil
	},
}
