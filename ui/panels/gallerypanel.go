package panels

import (
	"fmt"

	"mini-annotator/internal/app"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const thumbnailEdge = 160

// GalleryPanel lists the corpus photos with annotation progress and a
// thumbnail preview of the selected one.
type GalleryPanel struct {
	state     *app.State
	container fyne.CanvasObject

	list          *widget.List
	thumbnail     *fynecanvas.Image
	progressLabel *widget.Label
	progressBar   *widget.ProgressBar

	imageIDs  []string
	annotated map[string]bool
}

// NewGalleryPanel creates a new gallery panel.
func NewGalleryPanel(state *app.State) *GalleryPanel {
	gp := &GalleryPanel{
		state:     state,
		annotated: make(map[string]bool),
	}

	gp.thumbnail = &fynecanvas.Image{FillMode: fynecanvas.ImageFillContain}
	gp.thumbnail.SetMinSize(fyne.NewSize(thumbnailEdge, thumbnailEdge))

	gp.progressLabel = widget.NewLabel("No corpus open")
	gp.progressBar = widget.NewProgressBar()

	gp.list = widget.NewList(
		func() int {
			return len(gp.imageIDs)
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("photo")
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id >= len(gp.imageIDs) {
				return
			}
			imageID := gp.imageIDs[id]
			marker := "  "
			if gp.annotated[imageID] {
				marker = "* "
			}
			obj.(*widget.Label).SetText(marker + imageID)
		},
	)

	gp.list.OnSelected = func(id widget.ListItemID) {
		if id >= len(gp.imageIDs) {
			return
		}
		if err := state.OpenImage(gp.imageIDs[id]); err != nil {
			fyne.LogError("open image", err)
		}
	}

	gp.container = container.NewBorder(
		container.NewVBox(gp.thumbnail, gp.progressLabel, gp.progressBar),
		nil, nil, nil,
		gp.list,
	)

	state.On(app.EventCorpusOpened, func(interface{}) { gp.reload() })
	state.On(app.EventSaved, func(data interface{}) {
		if id, ok := data.(string); ok {
			gp.annotated[id] = true
		}
		gp.updateProgress()
		gp.list.Refresh()
	})
	state.On(app.EventImageLoaded, func(data interface{}) {
		if id, ok := data.(string); ok {
			gp.updateThumbnail(id)
		}
	})

	return gp
}

// Container returns the panel container.
func (gp *GalleryPanel) Container() fyne.CanvasObject {
	return gp.container
}

// reload refetches the image list and annotation markers from state.
func (gp *GalleryPanel) reload() {
	gp.imageIDs = gp.state.ImageIDs()
	gp.annotated = make(map[string]bool)
	if gp.state.Annotations != nil {
		if saved, err := gp.state.Annotations.List(); err == nil {
			for _, rec := range saved {
				gp.annotated[rec.ImageID] = true
			}
		}
	}
	gp.updateProgress()
	gp.list.Refresh()
}

func (gp *GalleryPanel) updateProgress() {
	annotated, total, err := gp.state.Progress()
	if err != nil || total == 0 {
		gp.progressLabel.SetText("No corpus open")
		gp.progressBar.SetValue(0)
		return
	}
	gp.progressLabel.SetText(fmt.Sprintf("Annotated %d of %d", annotated, total))
	gp.progressBar.SetValue(float64(annotated) / float64(total))
}

func (gp *GalleryPanel) updateThumbnail(imageID string) {
	if gp.state.Corpus == nil {
		return
	}
	thumb, err := gp.state.Corpus.Thumbnail(imageID, thumbnailEdge)
	if err != nil {
		fyne.LogError("thumbnail", err)
		return
	}
	gp.thumbnail.Image = thumb
	gp.thumbnail.Refresh()
}
