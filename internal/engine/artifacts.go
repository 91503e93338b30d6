package engine

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// dumpArtifact writes the verb's final snapshot as a PNG so failed
// runs leave pixel evidence behind. Best effort: artifact problems are
// logged, never fatal, and never change the outcome.
func (e *Engine) dumpArtifact(res *VerbResult, log *zap.SugaredLogger) {
	if e.opts.ArtifactDir == "" || res.Snapshot == nil || res.Snapshot.Img == nil {
		return
	}
	if err := os.MkdirAll(e.opts.ArtifactDir, 0o755); err != nil {
		log.Warnw("artifact dir", "error", err)
		return
	}

	name := fmt.Sprintf("%s-%s-%s.png", res.Verb, res.Outcome, uuid.NewString())
	path := filepath.Join(e.opts.ArtifactDir, name)
	f, err := os.Create(path)
	if err != nil {
		log.Warnw("artifact create", "error", err)
		return
	}
	defer f.Close()

	if err := png.Encode(f, res.Snapshot.Img); err != nil {
		log.Warnw("artifact encode", "error", err)
		return
	}
	res.Artifact = path
	log.Infow("artifact written", "path", path, "zone", res.Snapshot.Zone)
}
