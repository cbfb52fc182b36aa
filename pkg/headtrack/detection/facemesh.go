package detection

import (
	"context"
	"fmt"
	"image"
	"os"
	"sort"
	"sync"

	"gocv.io/x/gocv"
)

// FaceMesh is a two-stage landmark detector: a YuNet face box model finds
// the face, then a dense mesh model run on the cropped region yields the
// full landmark set. Landmarks are mapped back to full-frame normalized
// coordinates before they are returned.
type FaceMesh struct {
	config Config

	mu     sync.Mutex // Protects model state and inference
	loaded bool
	boxDet gocv.FaceDetectorYN
	mesh   gocv.Net
}

// NewFaceMesh creates an unloaded detector. Models are loaded by Ready.
func NewFaceMesh(cfg Config) *FaceMesh {
	return &FaceMesh{config: cfg}
}

// Ready loads both models and runs a warmup inference. It returns early
// with ctx.Err() if the context expires first; a load still in flight is
// then finished in the background and released by the next Close.
func (d *FaceMesh) Ready(ctx context.Context) error {
	done := make(chan error, 1)
	go func() { done <- d.load() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *FaceMesh) load() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.loaded {
		return nil
	}

	for _, path := range []string{d.config.FaceModelPath, d.config.MeshModelPath} {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("model file not found: %s", path)
		}
	}

	boxDet := gocv.NewFaceDetectorYNWithParams(
		d.config.FaceModelPath,
		"", // No config file needed for ONNX
		image.Pt(d.config.InputWidth, d.config.InputHeight),
		float32(d.config.ScoreThresh),
		0.3,  // NMS threshold
		5000, // Top K
		int(gocv.NetBackendDefault),
		int(gocv.NetTargetCPU),
	)

	mesh := gocv.ReadNetFromONNX(d.config.MeshModelPath)
	if mesh.Empty() {
		boxDet.Close()
		return fmt.Errorf("failed to load mesh model: %s", d.config.MeshModelPath)
	}

	d.boxDet = boxDet
	d.mesh = mesh
	d.loaded = true

	// Warmup pass so the first real frame does not pay the lazy
	// initialization cost inside the inference engine.
	blank := gocv.NewMatWithSize(d.config.InputHeight, d.config.InputWidth, gocv.MatTypeCV8UC3)
	defer blank.Close()
	d.meshForwardLocked(blank)

	return nil
}

// Detect finds faces in the JPEG frame and returns their landmark sets.
func (d *FaceMesh) Detect(jpeg []byte) ([]Face, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.loaded {
		return nil, fmt.Errorf("detector not ready")
	}

	img, err := gocv.IMDecode(jpeg, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	defer img.Close()

	if img.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	boxes := d.detectBoxesLocked(img)
	if len(boxes) == 0 {
		return nil, nil
	}

	maxFaces := d.config.MaxFaces
	if maxFaces <= 0 {
		maxFaces = 1
	}
	if len(boxes) > maxFaces {
		boxes = boxes[:maxFaces]
	}

	var faces []Face
	for _, box := range boxes {
		face, err := d.meshLandmarksLocked(img, box)
		if err != nil {
			return nil, err
		}
		faces = append(faces, face)
	}
	return faces, nil
}

type faceBox struct {
	rect  image.Rectangle
	score float64
}

// detectBoxesLocked runs the YuNet stage and returns face boxes in pixel
// coordinates, best score first.
func (d *FaceMesh) detectBoxesLocked(img gocv.Mat) []faceBox {
	d.boxDet.SetInputSize(image.Pt(img.Cols(), img.Rows()))

	out := gocv.NewMat()
	defer out.Close()
	d.boxDet.Detect(img, &out)

	var boxes []faceBox
	for r := 0; r < out.Rows(); r++ {
		// YuNet row format (15 columns): x, y, w, h, 5 landmark
		// pairs, score.
		score := float64(out.GetFloatAt(r, 14))
		if score < d.config.ScoreThresh {
			continue
		}
		x := int(out.GetFloatAt(r, 0))
		y := int(out.GetFloatAt(r, 1))
		w := int(out.GetFloatAt(r, 2))
		h := int(out.GetFloatAt(r, 3))
		boxes = append(boxes, faceBox{
			rect:  image.Rect(x, y, x+w, y+h),
			score: score,
		})
	}

	sort.Slice(boxes, func(i, j int) bool { return boxes[i].score > boxes[j].score })
	return boxes
}

// meshLandmarksLocked crops the face region with a margin, runs the mesh
// model on it and maps the landmarks back to full-frame normalized
// coordinates.
func (d *FaceMesh) meshLandmarksLocked(img gocv.Mat, box faceBox) (Face, error) {
	frame := image.Rect(0, 0, img.Cols(), img.Rows())

	mx := int(float64(box.rect.Dx()) * d.config.RoiMargin)
	my := int(float64(box.rect.Dy()) * d.config.RoiMargin)
	roi := box.rect.Inset(-max(mx, my)).Intersect(frame)
	if roi.Empty() {
		return nil, fmt.Errorf("face box outside frame")
	}

	crop := img.Region(roi)
	defer crop.Close()

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(crop, &resized, image.Pt(d.config.InputWidth, d.config.InputHeight), 0, 0, gocv.InterpolationLinear)

	out := d.meshForwardLocked(resized)
	defer out.Close()

	total := out.Total()
	if total < MeshLandmarkCount*3 {
		return nil, fmt.Errorf("unexpected mesh output size %d", total)
	}

	imgW := float64(frame.Dx())
	imgH := float64(frame.Dy())
	roiW := float64(roi.Dx())
	roiH := float64(roi.Dy())
	inW := float64(d.config.InputWidth)
	inH := float64(d.config.InputHeight)

	flat := out.Reshape(1, 1)
	defer flat.Close()

	face := make(Face, MeshLandmarkCount)
	for i := 0; i < MeshLandmarkCount; i++ {
		// Mesh output is in model input pixel units.
		vx := float64(flat.GetFloatAt(0, i*3))
		vy := float64(flat.GetFloatAt(0, i*3+1))
		vz := float64(flat.GetFloatAt(0, i*3+2))

		face[i] = Landmark{
			X: (float64(roi.Min.X) + vx/inW*roiW) / imgW,
			Y: (float64(roi.Min.Y) + vy/inH*roiH) / imgH,
			Z: vz / inW * roiW / imgW,
		}
	}
	return face, nil
}

func (d *FaceMesh) meshForwardLocked(img gocv.Mat) gocv.Mat {
	blob := gocv.BlobFromImage(img, 1.0/255.0,
		image.Pt(d.config.InputWidth, d.config.InputHeight),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.mesh.SetInput(blob, "")
	return d.mesh.Forward("")
}

// Close releases the models. The detector can be reloaded with Ready.
func (d *FaceMesh) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.loaded {
		return nil
	}
	d.loaded = false
	d.boxDet.Close()
	return d.mesh.Close()
}
