package hwpxfill

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunghoonbaek/go-hwpxfill/pkg/hwpxfill/hml"
)

// proposalTemplateBody is a compact rendition of the proposal layout:
// shared front matter, one region per project year and a closing
// block, with year-3 content that must vanish for two-year projects.
func proposalTemplateBody() string {
	yearRegion := func(year string) string {
		return para("{{section:year"+year+"}}") +
			para("○ (주관연구개발기관): {{goals.year"+year+"_main}}") +
			para("{{contents.year"+year+"_main}}") +
			scheduleTableXML("{{schedule.year"+year+"}}") +
			para("{{end:year"+year+"}}")
	}
	return para("연구개발의 필요성") +
		para("{{necessity}}") +
		para("{{final_goal}}") +
		para("{{strategy}}") +
		para("{{utilization}}") +
		yearRegion("1") +
		yearRegion("2") +
		yearRegion("3") +
		para("연구개발계획 (N차년도)") +
		para("{{effects}}")
}

func writeTemplate(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "template.hwpx")
	require.NoError(t, os.WriteFile(path, simpleHWPXBytes(proposalTemplateBody()), 0644))
	return path
}

func writePayload(t *testing.T, dir, payload string) string {
	t.Helper()
	path := filepath.Join(dir, "content.json")
	require.NoError(t, os.WriteFile(path, []byte(payload), 0644))
	return path
}

func generatedSection(t *testing.T, outputPath string) *hml.Node {
	t.Helper()
	pkg, err := Open(outputPath)
	require.NoError(t, err)
	member, ok := pkg.Member(MainSectionPart)
	require.True(t, ok)
	root, err := hml.Parse(member.Data)
	require.NoError(t, err)
	return root
}

func TestGenerateEndToEnd(t *testing.T) {
	dir := t.TempDir()
	template := writeTemplate(t, dir)
	payload := writePayload(t, dir, samplePayloadJSON)
	output := filepath.Join(dir, "out", "proposal.hwpx")

	result, err := Generate(GenerateOptions{
		TemplatePath: template,
		OutputPath:   output,
		DataPath:     payload,
		Config:       DefaultConfig(),
	})
	require.NoError(t, err)
	assert.Equal(t, output, result.OutputPath)

	root := generatedSection(t, output)
	text := sectionText(root)

	// No marker text survives.
	assert.NotContains(t, text, "{{")
	assert.NotContains(t, text, "}}")

	// Front matter and outline content.
	assert.Contains(t, text, "연구개발의 필요성")
	assert.Contains(t, text, "○ 국내 제조 현장의 자동화 대응 필요성")
	assert.Contains(t, text, "   - 숙련 인력 감소로 공정 자동화 요구가 증가함")
	assert.Contains(t, text, "○ 지능형 공정 제어 플랫폼 개발")

	// Year regions: kept years filled, year 3 gone.
	assert.Contains(t, text, "○ (주관연구개발기관): 핵심 모듈 설계 및 시제품 제작")
	assert.Contains(t, text, "○ (주관연구개발기관): 통합 시스템 구축 및 현장 실증")
	assert.NotContains(t, text, "year3")

	// Label rewrite.
	assert.Contains(t, text, "연구개발계획 (2차년도)")
	assert.NotContains(t, text, "N차년도")

	// Schedule tables: header plus exactly the payload's rows.
	tables := root.FindAll("tbl")
	require.Len(t, tables, 2)
	assert.Len(t, tables[0].Elements("tr"), 4)
	assert.Len(t, tables[1].Elements("tr"), 3)
	assert.Contains(t, text, "요구사항 분석")
	assert.Contains(t, text, "실증 보고서")

	// The unfilled utilization anchor comes back as a warning, not an
	// error.
	var codes []string
	for _, w := range result.Warnings {
		codes = append(codes, w.Code)
	}
	assert.Contains(t, codes, WarnUnfilledAnchor)
}

func TestGeneratePreservesUntouchedMembers(t *testing.T) {
	dir := t.TempDir()
	template := writeTemplate(t, dir)
	payload := writePayload(t, dir, samplePayloadJSON)
	output := filepath.Join(dir, "proposal.hwpx")

	_, err := Generate(GenerateOptions{
		TemplatePath: template,
		OutputPath:   output,
		DataPath:     payload,
		Config:       DefaultConfig(),
	})
	require.NoError(t, err)

	src, err := Open(template)
	require.NoError(t, err)
	dst, err := Open(output)
	require.NoError(t, err)

	require.Equal(t, src.Members(), dst.Members())
	for _, name := range src.Members() {
		if name == MainSectionPart {
			continue
		}
		orig, _ := src.Member(name)
		copied, _ := dst.Member(name)
		assert.Equal(t, orig.Data, copied.Data, name)
		assert.Equal(t, orig.Method, copied.Method, name)
	}
}

func TestGenerateIdempotent(t *testing.T) {
	dir := t.TempDir()
	template := writeTemplate(t, dir)
	payload := writePayload(t, dir, samplePayloadJSON)

	first := filepath.Join(dir, "first.hwpx")
	second := filepath.Join(dir, "second.hwpx")

	for _, output := range []string{first, second} {
		_, err := Generate(GenerateOptions{
			TemplatePath: template,
			OutputPath:   output,
			DataPath:     payload,
			Config:       DefaultConfig(),
		})
		require.NoError(t, err)
	}

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerateMalformedRequiredOutlineFails(t *testing.T) {
	dir := t.TempDir()
	template := writeTemplate(t, dir)
	payload := writePayload(t, dir, `{
		"_meta": {"total_years": 1},
		"necessity": ["○ 연구개발의 필요성"],
		"final_goal": ["○ 최종 목표", "- 성능을 확보함", "- 실증을 완료함", "- 보급을 추진함"]
	}`)
	output := filepath.Join(dir, "proposal.hwpx")

	_, err := Generate(GenerateOptions{
		TemplatePath: template,
		OutputPath:   output,
		DataPath:     payload,
		Config:       DefaultConfig(),
	})
	require.Error(t, err)
	assert.True(t, IsMalformedOutlineError(err))
	assert.Contains(t, err.Error(), "연구개발의 필요성")

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestGenerateAcceptsShortBulletDetails(t *testing.T) {
	dir := t.TempDir()
	template := writeTemplate(t, dir)
	payload := writePayload(t, dir, `{
		"_meta": {"total_years": 1},
		"necessity": ["○ 배경", "   - 이유1", "   - 이유2", "   - 이유3"],
		"final_goal": ["○ 최종 목표", "- 성능을 확보함", "- 실증을 완료함", "- 보급을 추진함"]
	}`)
	output := filepath.Join(dir, "proposal.hwpx")

	result, err := Generate(GenerateOptions{
		TemplatePath: template,
		OutputPath:   output,
		DataPath:     payload,
		Config:       DefaultConfig(),
	})
	require.NoError(t, err)

	text := sectionText(generatedSection(t, output))
	assert.Contains(t, text, "○ 배경")
	assert.Contains(t, text, "   - 이유1")
	assert.Contains(t, text, "   - 이유3")

	var codes []string
	for _, w := range result.Warnings {
		codes = append(codes, w.Code)
	}
	assert.Contains(t, codes, WarnDetailEnding)
}

func TestGenerateRejectsScheduleBeyondTotalYears(t *testing.T) {
	dir := t.TempDir()
	template := writeTemplate(t, dir)
	payload := writePayload(t, dir, `{
		"_meta": {"total_years": 1},
		"schedule": {
			"year1": [{"task": "분석", "result": "보고서"}],
			"year2": [{"task": "실증", "result": "보고서"}]
		}
	}`)
	output := filepath.Join(dir, "proposal.hwpx")

	_, err := Generate(GenerateOptions{
		TemplatePath: template,
		OutputPath:   output,
		DataPath:     payload,
		Config:       DefaultConfig(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "year2")

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestGenerateStrictModeRejectsUnknownAnchor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "template.hwpx")
	require.NoError(t, os.WriteFile(path, simpleHWPXBytes(para("{{no.such_anchor}}")), 0644))
	payload := writePayload(t, dir, `{"_meta": {"total_years": 1}}`)
	output := filepath.Join(dir, "proposal.hwpx")

	cfg := DefaultConfig()
	cfg.StrictMode = true
	_, err := Generate(GenerateOptions{
		TemplatePath: path,
		OutputPath:   output,
		DataPath:     payload,
		Config:       cfg,
	})
	require.Error(t, err)
	assert.True(t, IsUnknownPlaceholderError(err))

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestGenerateMissingTemplate(t *testing.T) {
	dir := t.TempDir()
	payload := writePayload(t, dir, samplePayloadJSON)

	_, err := Generate(GenerateOptions{
		TemplatePath: filepath.Join(dir, "missing.hwpx"),
		OutputPath:   filepath.Join(dir, "out.hwpx"),
		DataPath:     payload,
		Config:       DefaultConfig(),
	})
	require.Error(t, err)
	assert.True(t, IsIOError(err))
}

func TestGenerateAcceptsInMemoryPayload(t *testing.T) {
	dir := t.TempDir()
	template := writeTemplate(t, dir)
	output := filepath.Join(dir, "proposal.hwpx")

	payload := samplePayload(t)
	// Decomposed jamo for "개발 목표"; Generate composes it like the
	// JSON path does.
	payload.FinalGoal[0] = "○ 개발 목표"

	_, err := Generate(GenerateOptions{
		TemplatePath: template,
		OutputPath:   output,
		Payload:      payload,
		Config:       DefaultConfig(),
	})
	require.NoError(t, err)

	text := sectionText(generatedSection(t, output))
	assert.Contains(t, text, "○ 개발 목표")
}
