package compose_box

import (
	"context"
	"fmt"
	"math"
	"time"

	"viz-box/pkg/audio"
	"viz-box/pkg/encoder"
	console_parser "viz-box/pkg/encoder/console-parser"
	"viz-box/pkg/logger"
	object_storage "viz-box/pkg/object-storage"
	"viz-box/pkg/reaction"
)

var (
	log = logger.Build()
)

// CompositionRequest One audio-reactive composition job
type CompositionRequest struct {
	// Job UUID
	JobId string `json:"jobId"`
	// Storage backend key of the base video track
	VideoKey string `json:"videoKey"`
	// Storage backend key of the audio track driving the reactions
	AudioKey string `json:"audioKey"`
	// Visual layers composited over the base video, bottom-up
	Overlays []OverlaySpec `json:"overlays"`
	// All available composition options
	Options CompositionOptions `json:"options"`
}

// CompositionOptions All valid composition options
type CompositionOptions struct {
	// Output encoding preset name, empty for the default
	Preset string `json:"preset"`
	// Clean up used assets if the composition succeeded
	DeleteAssetsFromObjStore bool `json:"deleteAssetsFromObjStore"`
}

// OverlayKind What an overlay draws
type OverlayKind string

const (
	OverlayLogo     OverlayKind = "logo"
	OverlayText     OverlayKind = "text"
	OverlaySpectrum OverlayKind = "spectrum"
)

// OverlaySpec One visual layer and the audio reactions driving it
type OverlaySpec struct {
	Kind OverlayKind `json:"kind"`
	// Storage key of the image, for logo overlays
	LogoKey string `json:"logoKey"`
	// Text content and optional storage key of a font file, for text overlays
	Text    string `json:"text"`
	FontKey string `json:"fontKey"`
	// Spectrum rendering mode : "bars" or "waves"
	Mode string `json:"mode"`
	// Static geometry, zero values fall back to defaults
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
	// Static text size
	Size int `json:"size"`
	// Static text/box color
	Color string `json:"color"`
	// Static opacity, 0..1. Zero means opaque
	Opacity float64 `json:"opacity"`
	// Audio reactions driving properties of this overlay. A reaction on a
	// property overrides the static value
	Reactions []reaction.Reaction `json:"reactions"`
}

type ComposeBoxOptions struct {
	// Number of time to retry calls made to the object store.
	// Each call will be followed by a wait time of (2^attempt)s
	ObjStoreMaxRetry int8
}

// ComposeBox Orchestrates one composition : download assets, analyze the
// audio, build and compile the filter graph, run the encoder
type ComposeBox[T object_storage.BindingProxy] struct {
	// Assets Downloader
	Downloader *object_storage.ObjectStorage[T]
	// Audio feature extraction
	Analyzer *audio.Analyzer
	// Context
	Ctx context.Context
	// Cancel function
	Cancel context.CancelFunc
	// Error channel
	EChan chan error
	// Progress channel
	PChan chan console_parser.EncodingProgress
	// Duration of the output, set once the audio is analyzed. Used to turn
	// raw encoder progress into a completion percentage
	TargetDuration time.Duration
	// Behaviour options
	opt ComposeBoxOptions
}

func NewComposeBox[T object_storage.BindingProxy](ctx *context.Context, downloader *object_storage.ObjectStorage[T], opt *ComposeBoxOptions) *ComposeBox[T] {
	cCtx, cancel := context.WithCancel(*ctx)

	return &ComposeBox[T]{
		Downloader: downloader,
		Analyzer:   audio.NewAnalyzer(),
		Ctx:        cCtx,
		Cancel:     cancel,
		EChan:      make(chan error),
		PChan:      make(chan console_parser.EncodingProgress),
		opt:        *opt,
	}
}

// Compose Run the full pipeline for one request, writing the result to
// output. Progress and errors are streamed on PChan/EChan, completion is
// signalled by Ctx
func (cb *ComposeBox[T]) Compose(req *CompositionRequest, output string) {
	defer cb.Cancel()
	log.Infof(`Now processing composition request %+v`, req)

	// Download required assets
	allAssets := NewAssetCollectionFrom(req)
	log.Info(`Downloading required assets...`)
	if err := cb.downloadAssets(allAssets); err != nil {
		log.Errorf(`Error while downloading assets : %s`, err)
		cb.EChan <- err
		return
	}
	// Queue the assets cleaning up
	defer cb.cleanUpAssets()

	// Extract the feature series driving the reactions
	log.Info(`Analyzing audio track...`)
	features, err := cb.Analyzer.AnalyzeFile(cb.Ctx, allAssets.AudioPath())
	if err != nil {
		log.Errorf(`Error while analyzing audio : %s`, err)
		cb.EChan <- err
		return
	}
	cb.TargetDuration = features.Duration

	// Turn the request into an FFMPEG invocation
	enc, err := cb.setupEnc(req, allAssets, features, output)
	if err != nil {
		log.Errorf(`Error while setup encoding : %s`, err)
		cb.EChan <- err
		return
	}

	// Finally, start the encoding process itself
	log.Debugf("Now executing FFMPEG cmd : %v", enc.Args())
	go enc.Start()
	for {
		select {
		case p := <-enc.PChan:
			cb.PChan <- *p
		case e := <-enc.EChan:
			cb.EChan <- fmt.Errorf("error while encoding : %w", e)
		case <-enc.Ctx.Done():
			return
		}
	}
}

// Concurrently download all assets required for the composition.
// Modify in place the array pointer
func (cb *ComposeBox[T]) downloadAssets(assets *AssetCollection) error {
	errorChannel := make(chan error)
	successChannel := make(chan bool, len(*assets))

	// Fire all downloads concurrently
	for _, asset := range *assets {
		log.Debugf(`Downloading asset "%s"`, asset.key)
		go func(asset *Asset) {
			var path string
			var err error
			for attempts := int8(0); attempts <= cb.opt.ObjStoreMaxRetry; attempts++ {
				path, err = cb.Downloader.Download(asset.key)
				if err == nil {
					break
				}
				log.Warnf(`error in attempt %d at downloading asset "%s" : %s`, attempts, asset.key, err.Error())
				// Exponential backoff, the asset may simply not be fully
				// uploaded yet
				delaySecs := int64(math.Pow(2, float64(attempts)))
				time.Sleep(time.Duration(delaySecs) * time.Second)
			}
			if err != nil {
				errorChannel <- err
				return
			}
			asset.path = path
			// Mark this goroutine as succeeded
			successChannel <- true
		}(asset)
	}

	successCounter := 0
	// And wait for all of them
	for successCounter < len(*assets) {
		select {
		// If any download fails, abort everything
		case e := <-errorChannel:
			return fmt.Errorf("error while downloading required assets : %s", e.Error())
		case <-successChannel:
			successCounter++
		}
	}
	return nil
}

// Remove all downloaded assets from disk
func (cb *ComposeBox[T]) cleanUpAssets() {
	log.Infof("[Compose box] :: Cleaning up downloaded assets")
	if err := cb.Downloader.Cleanup(); err != nil {
		log.Warnf("[Compose box] :: Could not clean up assets : %s", err.Error())
	}
}

// Setup an Encoder instance from the request, the downloaded assets and the
// extracted audio features
func (cb *ComposeBox[T]) setupEnc(req *CompositionRequest, assets *AssetCollection, features *audio.Features, output string) (*encoder.Encoder, error) {
	if req.VideoKey == "" || req.AudioKey == "" {
		return nil, fmt.Errorf("a composition needs both a video and an audio track : %+v", req)
	}

	compiled, err := buildGraph(req, assets, features)
	if err != nil {
		return nil, fmt.Errorf("error while building the filter graph : %w", err)
	}

	builder := &encoder.Builder{}
	builder.AddInput(&encoder.FileInput{Path: assets.VideoPath()}).
		AddInput(&encoder.FileInput{Path: assets.AudioPath()}).
		SetFilter(compiled).
		Map(fmt.Sprintf("[%s]", graphOutputLabel)).
		Map("1:a").
		AddOutputOption(encoder.OutputPreset(req.Options.Preset)...).
		AddOutputOption(encoder.AAC192...).
		AddOutputOption("-shortest").
		SetOutput(output)
	return builder.Build(&cb.Ctx)
}
