package hwpxfill

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunghoonbaek/go-hwpxfill/pkg/hwpxfill/hml"
)

// buildHWPXBytes assembles a minimal HWPX package in memory. The
// mimetype member is stored uncompressed the way Hancom writes it.
func buildHWPXBytes(sections map[string]string) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	mimetype, _ := w.CreateHeader(&zip.FileHeader{
		Name:   "mimetype",
		Method: zip.Store,
	})
	io.WriteString(mimetype, "application/hwp+zip")

	version, _ := w.Create("version.xml")
	io.WriteString(version, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<hv:HCFVersion xmlns:hv="http://www.hancom.co.kr/hwpml/2011/version" major="5" minor="1"/>`)

	header, _ := w.Create("Contents/header.xml")
	io.WriteString(header, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<hh:head xmlns:hh="http://www.hancom.co.kr/hwpml/2011/head" secCnt="1"/>`)

	for name, body := range sections {
		sec, _ := w.Create(name)
		io.WriteString(sec, body)
	}

	w.Close()
	return buf.Bytes()
}

// simpleHWPXBytes builds a one-section package around the given body.
func simpleHWPXBytes(body string) []byte {
	return buildHWPXBytes(map[string]string{
		MainSectionPart: sectionXML(body),
	})
}

// sectionXML wraps paragraph markup in a section root carrying the
// 2011 HWPML namespaces.
func sectionXML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<hs:sec xmlns:hs="http://www.hancom.co.kr/hwpml/2011/section" xmlns:hp="http://www.hancom.co.kr/hwpml/2011/paragraph">` + body + `</hs:sec>`
}

// para builds one styled paragraph with a layout cache, the shape the
// template's own paragraphs take.
func para(text string) string {
	return `<hp:p paraPrIDRef="3" styleIDRef="0"><hp:run charPrIDRef="35"><hp:t>` + text + `</hp:t></hp:run><hp:linesegarray><hp:lineseg textpos="0" vertpos="0"/></hp:linesegarray></hp:p>`
}

// cell builds one table cell with address and size bookkeeping.
func cell(text string, col, row int) string {
	return fmt.Sprintf(`<hp:tc name="" header="0"><hp:cellAddr colAddr="%d" rowAddr="%d"/><hp:cellSpan colSpan="1" rowSpan="1"/><hp:cellSz width="8000" height="1000"/><hp:subList><hp:p paraPrIDRef="3"><hp:run charPrIDRef="35"><hp:t>%s</hp:t></hp:run></hp:p></hp:subList></hp:tc>`, col, row, text)
}

// scheduleTableXML builds a schedule table with one header row and the
// given anchor rows, wrapped in its carrier paragraph.
func scheduleTableXML(anchorTexts ...string) string {
	var b strings.Builder
	rowCnt := len(anchorTexts) + 1
	b.WriteString(`<hp:p paraPrIDRef="3"><hp:run charPrIDRef="35"><hp:tbl rowCnt="`)
	fmt.Fprintf(&b, "%d", rowCnt)
	b.WriteString(`" colCnt="2"><hp:sz width="40000" height="`)
	fmt.Fprintf(&b, "%d", rowCnt*1000)
	b.WriteString(`" protect="0"/>`)
	b.WriteString(`<hp:tr>` + cell("수행 내용", 0, 0) + cell("달성 실적", 1, 0) + `</hp:tr>`)
	for i, anchor := range anchorTexts {
		b.WriteString(`<hp:tr>` + cell(anchor, 0, i+1) + cell("", 1, i+1) + `</hp:tr>`)
	}
	b.WriteString(`</hp:tbl></hp:run></hp:p>`)
	return b.String()
}

// parseSection parses section markup into a tree, failing the test on
// malformed fixtures.
func parseSection(t *testing.T, body string) *hml.Node {
	t.Helper()
	root, err := hml.Parse([]byte(sectionXML(body)))
	require.NoError(t, err)
	return root
}

// sectionText flattens the visible text of a parsed section.
func sectionText(root *hml.Node) string {
	var b strings.Builder
	for _, tn := range root.FindAll("t") {
		b.WriteString(tn.AllText())
		b.WriteString("\n")
	}
	return b.String()
}

// samplePayload is a three-year payload touching every content kind.
func samplePayload(t *testing.T) *Payload {
	t.Helper()
	p, err := ParsePayload([]byte(samplePayloadJSON))
	require.NoError(t, err)
	return p
}

const samplePayloadJSON = `{
  "_meta": {"total_years": 2, "stage": 1, "months": {"year1": 12, "year2": 9}},
  "necessity": [
    "○ 국내 제조 현장의 자동화 대응 필요성",
    "- 숙련 인력 감소로 공정 자동화 요구가 증가함",
    "- 기존 장비는 다품종 소량 생산에 대응하지 못함",
    "- 국산화를 통한 공급망 안정화가 시급함"
  ],
  "final_goal": [
    "○ 지능형 공정 제어 플랫폼 개발",
    "- 실시간 공정 데이터 수집 체계를 구축함",
    "- 제어 정확도 95% 이상을 달성함",
    "- 현장 실증을 통해 상용화 기반을 확보함"
  ],
  "yearly_goals": {
    "year1_main": "핵심 모듈 설계 및 시제품 제작",
    "year2_main": "통합 시스템 구축 및 현장 실증"
  },
  "yearly_contents": {
    "year1_main": [
      "○ 핵심 모듈 설계",
      "- 요구사항 분석을 수행함",
      "- 설계 검증 시험을 완료함",
      "- 시제품 제작 공정을 확립함"
    ],
    "year2_main": [
      "○ 통합 시스템 구축",
      "- 모듈 간 연동 시험을 수행함",
      "- 현장 실증 데이터를 확보함",
      "- 성능 개선 사항을 반영함"
    ]
  },
  "schedule": {
    "year1": [
      {"task": "요구사항 분석", "result": "분석 보고서"},
      {"task": "핵심 모듈 설계", "result": "설계 문서"},
      {"task": "시제품 제작", "result": "시제품 1식"}
    ],
    "year2": [
      {"task": "통합 시스템 구축", "result": "통합 시스템"},
      {"task": "현장 실증", "result": "실증 보고서"}
    ]
  },
  "strategy": [
    "○ 단계별 검증 전략",
    "- 모듈 단위 검증 후 통합 검증을 수행함",
    "- 외부 시험기관 공인 시험을 병행함",
    "- 실증 결과를 설계에 환류함"
  ],
  "effects": [
    "○ 기대효과",
    "- 공정 불량률을 30% 절감함",
    "- 수입 대체 효과가 기대됨",
    "- 관련 산업의 고용 창출에 기여함"
  ]
}`
