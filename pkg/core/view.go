package core

// ViewMode 视图状态
type ViewMode int

const (
	ViewExploring  ViewMode = iota // 漫游
	ViewInspecting                 // 全屏查看展品
)

func (m ViewMode) String() string {
	switch m {
	case ViewExploring:
		return "Exploring"
	case ViewInspecting:
		return "Inspecting"
	}
	return "Unknown"
}

// Viewer 外部的全屏查看器
type Viewer interface {
	Open(view ExhibitView)
	Close()
}

type nopViewer struct{}

func (nopViewer) Open(ExhibitView) {}
func (nopViewer) Close()           {}

// ViewState 漫游/查看 两态状态机
type ViewState struct {
	mode      ViewMode
	activeRef int
	viewer    Viewer
}

// NewViewState 初始为漫游状态
func NewViewState(viewer Viewer) *ViewState {
	if viewer == nil {
		viewer = nopViewer{}
	}
	return &ViewState{mode: ViewExploring, activeRef: -1, viewer: viewer}
}

// Open 漫游 -> 查看；没有候选展品或已在查看时返回 false
func (v *ViewState) Open(view ExhibitView, ok bool) bool {
	if v.mode == ViewInspecting || !ok {
		return false
	}
	v.mode = ViewInspecting
	v.activeRef = view.Index
	v.viewer.Open(view)
	return true
}

// Close 查看 -> 漫游；已在漫游时返回 false
func (v *ViewState) Close() bool {
	if v.mode != ViewInspecting {
		return false
	}
	v.mode = ViewExploring
	v.activeRef = -1
	v.viewer.Close()
	return true
}

// Mode 当前状态
func (v *ViewState) Mode() ViewMode { return v.mode }

// Inspecting 是否处于查看状态
func (v *ViewState) Inspecting() bool { return v.mode == ViewInspecting }

// Ref 正在查看的展品索引
func (v *ViewState) Ref() (int, bool) {
	return v.activeRef, v.mode == ViewInspecting
}
