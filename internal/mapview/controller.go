package mapview

import (
	"io"
	"sync"

	"religion-map/internal/chart"
	"religion-map/internal/religion"
)

// 文档注释：单会话的交互控制器（选中/筛选/饼图）
// 约束：持有一份 State 与一个饼图容器；选中时重建饼图，筛选不影响饼图；方法并发安全。
type Controller struct {
	mu     sync.Mutex
	view   *MapView
	state  State
	detail chart.Container
}

func NewController(v *MapView) *Controller {
	return &Controller{view: v, state: DefaultState()}
}

// Restore：以已有状态恢复会话（重建饼图）
func (c *Controller) Restore(st State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = st.Normalize()
	c.syncDetail()
}

func (c *Controller) syncDetail() {
	f, ok := c.view.Feature(c.state.Selected)
	if !ok {
		c.detail.Clear()
		return
	}
	c.detail.Render(f.Profile)
}

// Select：选中要素并打开饼图
func (c *Controller) Select(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, err := c.view.Select(c.state, id)
	if err != nil {
		return err
	}
	c.state = st
	c.syncDetail()
	return nil
}

// SelectByName：按显示名选中
func (c *Controller) SelectByName(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, err := c.view.SelectByName(c.state, name)
	if err != nil {
		return err
	}
	c.state = st
	c.syncDetail()
	return nil
}

// SelectAt：按视口像素选中
func (c *Controller) SelectAt(x, y float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, err := c.view.SelectAt(c.state, x, y)
	if err != nil {
		return err
	}
	c.state = st
	c.syncDetail()
	return nil
}

func (c *Controller) ApplyFilter(f religion.Filter) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, err := c.view.ApplyFilter(c.state, f)
	if err != nil {
		return err
	}
	c.state = st
	return nil
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Label() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view.Label(c.state)
}

// Detail：当前饼图；未选中为 nil
func (c *Controller) Detail() *chart.Chart { return c.detail.Current() }

func (c *Controller) RenderSVG(w io.Writer, opts RenderOptions) error {
	return c.view.RenderSVG(w, c.State(), opts)
}
