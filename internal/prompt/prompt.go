// Package prompt renders parsed profiling data into the request sent to the optimization advisor.
package prompt

import (
	_ "embed"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/farcloser/lineprof/internal/types"
)

//go:embed advisor.yaml
var defaultAdvisor string

// Section is a named section of a rendered prompt. Name becomes a markdown heading ("line_profiler_results"
// renders as "# LINE PROFILER RESULTS"). Append names a data key whose value follows Text; when that value is
// empty the whole section is omitted. Format "yaml" wraps the appended value in a fenced block.
type Section struct {
	Name    string
	Text    string
	Append  string
	Format  string
	Heading string
}

type sectionDetail struct {
	Text    string `yaml:"text"`
	Append  string `yaml:"append"`
	Format  string `yaml:"format"`
	Heading string `yaml:"heading"`
}

// Def is an ordered list of sections. In YAML it is a sequence of single-key mappings whose value is either the
// text itself or a mapping with text/append/format/heading fields.
type Def []Section

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Def) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("prompt definition must be a YAML sequence, got %v", value.Kind)
	}

	sections := make(Def, 0, len(value.Content))

	for idx, item := range value.Content {
		if item.Kind != yaml.MappingNode || len(item.Content) < 2 {
			return fmt.Errorf("section %d: expected a single-key mapping", idx)
		}

		sec := Section{Name: item.Content[0].Value}
		valNode := item.Content[1]

		switch valNode.Kind {
		case yaml.ScalarNode:
			sec.Text = valNode.Value
		case yaml.MappingNode:
			var detail sectionDetail
			if err := valNode.Decode(&detail); err != nil {
				return fmt.Errorf("section %q: %w", sec.Name, err)
			}

			sec.Text = detail.Text
			sec.Append = detail.Append
			sec.Format = detail.Format
			sec.Heading = detail.Heading
		default:
			return fmt.Errorf("section %q: unexpected YAML node kind %v", sec.Name, valNode.Kind)
		}

		sections = append(sections, sec)
	}

	*d = sections

	return nil
}

// ParseDef reads a prompt definition from YAML.
func ParseDef(content string) (Def, error) {
	var def Def
	if err := yaml.Unmarshal([]byte(content), &def); err != nil {
		return nil, err //nolint:wrapcheck
	}

	return def, nil
}

// LoadDef reads a prompt definition file. An empty path returns the built-in advisor prompt.
func LoadDef(path string) (Def, error) {
	if path == "" {
		return DefaultDef(), nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // user-provided prompt template
	if err != nil {
		return nil, fmt.Errorf("reading prompt %s: %w", path, err)
	}

	def, err := ParseDef(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing prompt %s: %w", path, err)
	}

	return def, nil
}

// DefaultDef returns the built-in advisor prompt.
func DefaultDef() Def {
	def, err := ParseDef(defaultAdvisor)
	if err != nil {
		panic(fmt.Sprintf("embedded advisor prompt: %v", err))
	}

	return def
}

// Input is everything the advisor gets to see.
type Input struct {
	Functions []string         // reconstructed source, parallel to Profiles
	Profiles  []types.Function // structured records
	Memory    string           // raw memory profiler capture, passed through
	Hotspots  []string         // one finding per entry
}

// Data turns an Input into the placeholder map used by Render.
func Data(in Input) (map[string]string, error) {
	data := map[string]string{
		"functions": renderFunctions(in.Functions, in.Profiles),
		"memory":    strings.TrimSpace(in.Memory),
		"hotspots":  renderList(in.Hotspots),
		"profile":   "",
	}

	if len(in.Profiles) > 0 {
		out, err := yaml.Marshal(in.Profiles)
		if err != nil {
			return nil, fmt.Errorf("serializing profile records: %w", err)
		}

		data["profile"] = string(out)
	}

	return data, nil
}

// Render builds the prompt for in with the given definition.
func Render(def Def, in Input) (string, error) {
	data, err := Data(in)
	if err != nil {
		return "", err
	}

	return RenderDef(def, data), nil
}

// RenderDef assembles a prompt from a definition and a data map. {key} placeholders are substituted in
// section text only, never in appended values, so braces inside profiled code are left alone.
func RenderDef(def Def, data map[string]string) string {
	var buf strings.Builder

	placeholders := placeholderReplacer(data)
	first := true

	for _, sec := range def {
		if sec.Append != "" && data[sec.Append] == "" {
			continue
		}

		if !first {
			buf.WriteString("\n")
		}

		first = false

		buf.WriteString(heading(sec))
		buf.WriteString("\n\n")

		if sec.Text != "" {
			buf.WriteString(placeholders.Replace(sec.Text))
		}

		if sec.Append == "" {
			continue
		}

		val := data[sec.Append]

		switch sec.Format {
		case "yaml":
			buf.WriteString("\n```yaml\n")
			buf.WriteString(val)

			if !strings.HasSuffix(val, "\n") {
				buf.WriteByte('\n')
			}

			buf.WriteString("```\n")
		default:
			buf.WriteString("\n")
			buf.WriteString(val)

			if !strings.HasSuffix(val, "\n") {
				buf.WriteByte('\n')
			}
		}
	}

	return buf.String()
}

// placeholderReplacer substitutes every {key} in one pass, so substituted values are never expanded again.
func placeholderReplacer(data map[string]string) *strings.Replacer {
	keys := slices.Sorted(maps.Keys(data))
	pairs := make([]string, 0, 2*len(keys))

	for _, key := range keys {
		pairs = append(pairs, "{"+key+"}", data[key])
	}

	return strings.NewReplacer(pairs...)
}

func heading(sec Section) string {
	if sec.Heading != "" {
		return sec.Heading
	}

	return "# " + strings.ToUpper(strings.ReplaceAll(sec.Name, "_", " "))
}

func renderFunctions(texts []string, profiles []types.Function) string {
	var buf strings.Builder

	for idx, text := range texts {
		title := fmt.Sprintf("function %d", idx+1)
		if idx < len(profiles) {
			title = fmt.Sprintf("%s (line %d)", profiles[idx].Name, profiles[idx].LineNumber)
		}

		fmt.Fprintf(&buf, "## %s\n\n```\n%s\n```\n", title, text)
	}

	return buf.String()
}

func renderList(items []string) string {
	var buf strings.Builder

	for _, item := range items {
		buf.WriteString("- ")
		buf.WriteString(item)
		buf.WriteByte('\n')
	}

	return buf.String()
}
