package output

import (
	"fmt"
	"strings"

	"github.com/bayleafwalker/bindery-graph/internal/graph"
	"github.com/bayleafwalker/bindery-graph/internal/introspect"
	"github.com/bayleafwalker/bindery-graph/internal/registry"
)

type targetView struct {
	Name    string   `json:"name"`
	Kind    string   `json:"kind"`
	File    string   `json:"file,omitempty"`
	Status  string   `json:"status"`
	Error   string   `json:"error,omitempty"`
	Reasons []string `json:"reasons,omitempty"`
}

func statusOf(st registry.TargetStatus) targetView {
	v := targetView{Name: st.Name, Kind: string(st.Kind), File: st.File, Status: "resolved"}
	if st.Err != nil {
		v.Status = "failed"
		if isIgnored(st.Err) {
			v.Status = "ignored"
		}
		v.Error = st.Err.Error()
		v.Reasons = registry.Reasons(st.Err)
	}
	return v
}

// Report prints the outcome of each requested target.
func (p *Printer) Report(report registry.Report) error {
	views := make([]targetView, 0, len(report.Targets))
	for _, st := range report.Targets {
		views = append(views, statusOf(st))
	}
	if ok, err := p.encode(struct {
		Kind    string       `json:"kind"`
		Targets []targetView `json:"targets"`
	}{Kind: string(report.Kind), Targets: views}); ok {
		return err
	}

	for _, v := range views {
		switch v.Status {
		case "resolved":
			p.println(fmt.Sprintf("%s %s", p.styles.ok.Render(v.Name), p.styles.file.Render(v.File)))
		case "ignored":
			p.println(fmt.Sprintf("%s %s", p.styles.ignored.Render(v.Name), p.styles.dim.Render("(assumed provided)")))
		default:
			p.println(fmt.Sprintf("%s %s", p.styles.failed.Render(v.Name), v.Error))
		}
	}
	return nil
}

// Visits prints a traversal as an indented tree. Nodes already shown are
// dimmed and marked.
func (p *Printer) Visits(root string, visits []graph.Visit, truncated bool) error {
	if ok, err := p.encode(struct {
		Root      string        `json:"root"`
		Visits    []graph.Visit `json:"visits"`
		Truncated bool          `json:"truncated,omitempty"`
	}{Root: root, Visits: visits, Truncated: truncated}); ok {
		return err
	}

	p.println(p.styles.header.Render(root))
	for _, v := range visits {
		indent := strings.Repeat("  ", v.Depth+1)
		if v.Seen {
			p.println(indent + p.styles.seen.Render(v.File+" (seen)"))
			continue
		}
		p.println(indent + p.styles.file.Render(v.File))
	}
	if truncated {
		p.println(p.styles.dim.Render("... truncated"))
	}
	return nil
}

// Files prints a list of definition files.
func (p *Printer) Files(files []string) error {
	if files == nil {
		files = []string{}
	}
	if ok, err := p.encode(struct {
		Files []string `json:"files"`
	}{Files: files}); ok {
		return err
	}
	for _, f := range files {
		p.println(f)
	}
	return nil
}

// Data prints metadata variables. With vars set, only those are printed, in
// the order given, and missing ones are shown empty.
func (p *Printer) Data(data introspect.Data, vars []string) error {
	keys := vars
	if len(keys) == 0 {
		keys = data.Keys()
	}
	selected := make(map[string]string, len(keys))
	for _, k := range keys {
		selected[k] = data[k]
	}
	if ok, err := p.encode(selected); ok {
		return err
	}

	if len(vars) == 1 {
		p.println(selected[vars[0]])
		return nil
	}
	for _, k := range keys {
		p.println(fmt.Sprintf("%s=%q", p.styles.key.Render(k), selected[k]))
	}
	return nil
}

type requestView struct {
	Target   string `json:"target"`
	Kind     string `json:"kind"`
	Depender string `json:"depender,omitempty"`
}

// Requests prints why file is part of the target set.
func (p *Printer) Requests(file string, reqs []registry.Request) error {
	views := make([]requestView, 0, len(reqs))
	for _, r := range reqs {
		views = append(views, requestView{Target: r.Target.Name, Kind: string(r.Target.Kind), Depender: r.Depender})
	}
	if ok, err := p.encode(struct {
		File     string        `json:"file"`
		Requests []requestView `json:"requests"`
	}{File: file, Requests: views}); ok {
		return err
	}

	p.println(p.styles.header.Render(file))
	if len(views) == 0 {
		p.println(p.styles.dim.Render("  not part of the target set"))
	}
	for _, v := range views {
		by := "requested"
		if v.Depender != "" {
			by = "needed by " + p.styles.file.Render(v.Depender)
		}
		p.println(fmt.Sprintf("  %s %s (%s)", p.styles.ok.Render(v.Target), by, v.Kind))
	}
	return nil
}
