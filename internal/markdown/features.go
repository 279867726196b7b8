package markdown

import "sort"

// Feature names, as the host application names its markdown plugins.
const (
	FeatureSoftBreaks  = "softbreaks"
	FeatureTypographer = "typographer"
	FeatureLinkify     = "linkify"
	FeatureKatex       = "katex"
	FeatureFountain    = "fountain"
	FeatureMermaid     = "mermaid"
	FeatureAudioPlayer = "audioPlayer"
	FeatureVideoPlayer = "videoPlayer"
	FeaturePDFViewer   = "pdfViewer"
	FeatureMark        = "mark"
	FeatureFootnote    = "footnote"
	FeatureTOC         = "toc"
	FeatureSub         = "sub"
	FeatureSup         = "sup"
	FeatureDeflist     = "deflist"
	FeatureAbbr        = "abbr"
	FeatureEmoji       = "emoji"
	FeatureInsert      = "insert"
	FeatureMultitable  = "multitable"
)

// Features maps a feature name to whether it is enabled.
type Features map[string]bool

// DefaultFeatures mirrors the host application's defaults.
func DefaultFeatures() Features {
	return Features{
		FeatureSoftBreaks:  false,
		FeatureTypographer: false,
		FeatureLinkify:     true,
		FeatureKatex:       true,
		FeatureFountain:    false,
		FeatureMermaid:     true,
		FeatureAudioPlayer: true,
		FeatureVideoPlayer: true,
		FeaturePDFViewer:   true,
		FeatureMark:        true,
		FeatureFootnote:    true,
		FeatureTOC:         true,
		FeatureSub:         false,
		FeatureSup:         false,
		FeatureDeflist:     false,
		FeatureAbbr:        false,
		FeatureEmoji:       false,
		FeatureInsert:      false,
		FeatureMultitable:  false,
	}
}

// Enabled reports whether name is switched on. Unknown names are off.
func (f Features) Enabled(name string) bool {
	return f[name]
}

// Clone returns an independent copy.
func (f Features) Clone() Features {
	out := make(Features, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Merge returns f with the entries of overrides applied on top.
func (f Features) Merge(overrides map[string]bool) Features {
	out := f.Clone()
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// Names returns the enabled feature names, sorted.
func (f Features) Names() []string {
	var out []string
	for k, v := range f {
		if v {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
