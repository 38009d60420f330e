package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jsphweid/vidstream/constants"
	"github.com/jsphweid/vidstream/db"
	"github.com/jsphweid/vidstream/file"
	"github.com/jsphweid/vidstream/log"
	"github.com/jsphweid/vidstream/stream"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

type serveOptions struct {
	dir              string
	port             int
	chunkSize        int
	corsOrigins      []string
	metadataEndpoint string
	metadataTable    string
	metadataRegion   string
	rescanDebounce   time.Duration
}

var serveOpts serveOptions

func init() {
	rootCmd.AddCommand(serveCmd)

	flags := serveCmd.Flags()
	flags.StringVar(&serveOpts.dir, "dir", constants.GetVideoDir(), "directory of videos to serve (VIDEO_PATH)")
	flags.IntVar(&serveOpts.port, "port", constants.GetPort(), "port to listen on (PORT)")
	flags.IntVar(&serveOpts.chunkSize, "chunk-size", constants.GetChunkSize(), "bytes read per chunk while streaming (CHUNK_SIZE)")
	flags.StringSliceVar(&serveOpts.corsOrigins, "cors-origins", constants.GetCorsOrigins(), "allowed CORS origins (CORS_ORIGINS)")
	flags.StringVar(&serveOpts.metadataEndpoint, "metadata-endpoint", constants.GetMetadataEndpoint(), "DynamoDB endpoint for video metadata, empty disables it (METADATA_ENDPOINT)")
	flags.StringVar(&serveOpts.metadataTable, "metadata-table", constants.GetMetadataTable(), "DynamoDB table for video metadata (METADATA_TABLE)")
	flags.StringVar(&serveOpts.metadataRegion, "metadata-region", constants.GetMetadataRegion(), "AWS region of the metadata table (METADATA_REGION)")
	flags.DurationVar(&serveOpts.rescanDebounce, "rescan-debounce", constants.GetRescanDebounce(), "quiet period before a requested rescan runs (RESCAN_DEBOUNCE)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the video directory",
	Long:  `Serves the video directory over HTTP with range request support.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, serveOpts)
	},
}

// NewRouter wires the stream handler's routes behind CORS. Range must be
// allowed in and Content-Range exposed out or browsers can't seek.
func NewRouter(h *stream.Handler, origins []string) http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	h.Register(router)

	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodPost},
		AllowedHeaders: []string{"Range"},
		ExposedHeaders: []string{"Content-Range", "Accept-Ranges", "Content-Length"},
	})
	return c.Handler(router)
}

func newMetadataSource(opts serveOptions) (db.Source, error) {
	if opts.metadataEndpoint == "" {
		return nil, nil
	}
	d, err := db.NewDynamo(opts.metadataEndpoint, opts.metadataRegion, opts.metadataTable)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func serve(ctx context.Context, opts serveOptions) error {
	library, err := file.NewLibrary(opts.dir, file.WithRescanDebounce(opts.rescanDebounce))
	if err != nil {
		return err
	}
	videos, err := library.Scan()
	if err != nil {
		return err
	}

	metadata, err := newMetadataSource(opts)
	if err != nil {
		return err
	}

	h := stream.New(library, opts.chunkSize, metadata)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.port),
		Handler:           NewRouter(h, opts.corsOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.S().Infow("Serving videos",
			"dir", library.Root(),
			"videos", len(videos),
			"addr", srv.Addr,
			"chunk_size", opts.chunkSize,
			"metadata", metadata != nil,
		)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return errors.Wrap(err, "server stopped")
	case <-ctx.Done():
	}

	log.S().Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "could not shut down cleanly")
	}
	return nil
}
