package deck

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// TextFrame 은 도형의 p:txBody
type TextFrame struct {
	el *etree.Element
}

// Text 는 모든 문단의 텍스트를 개행으로 연결해 반환한다.
func (tf *TextFrame) Text() string {
	var lines []string
	for _, p := range tf.Paragraphs() {
		lines = append(lines, p.Text())
	}
	return strings.Join(lines, "\n")
}

// Paragraphs 는 문단 목록. 비어 있는 프레임에도 OOXML 상 최소 한 문단이 있다.
func (tf *TextFrame) Paragraphs() []*Paragraph {
	var paragraphs []*Paragraph
	for _, p := range tf.el.SelectElements("a:p") {
		paragraphs = append(paragraphs, &Paragraph{el: p})
	}
	return paragraphs
}

// Clear 는 첫 문단의 속성만 남기고 모든 텍스트 내용을 비운다.
func (tf *TextFrame) Clear() {
	paragraphs := tf.el.SelectElements("a:p")
	for i, p := range paragraphs {
		if i == 0 {
			for _, child := range p.ChildElements() {
				switch child.FullTag() {
				case "a:r", "a:br", "a:fld":
					p.RemoveChild(child)
				}
			}
			continue
		}
		tf.el.RemoveChild(p)
	}
	if len(paragraphs) == 0 {
		tf.el.CreateElement("a:p")
	}
}

// SetText 는 프레임을 비우고 주어진 텍스트를 넣는다. 개행은 문단 경계가 된다.
func (tf *TextFrame) SetText(text string) {
	tf.Clear()
	lines := strings.Split(text, "\n")
	paragraphs := tf.Paragraphs()
	first := paragraphs[0]
	first.AddRun(lines[0])
	for _, line := range lines[1:] {
		p := &Paragraph{el: tf.el.CreateElement("a:p")}
		p.AddRun(line)
	}
}

// SetWordWrap 은 자동 줄바꿈을 켜거나 끈다.
func (tf *TextFrame) SetWordWrap(wrap bool) {
	bodyPr := tf.ensureBodyPr()
	bodyPr.RemoveAttr("wrap")
	if wrap {
		bodyPr.CreateAttr("wrap", "square")
	} else {
		bodyPr.CreateAttr("wrap", "none")
	}
}

// SetMargins 는 프레임 내부 여백을 지정한다.
func (tf *TextFrame) SetMargins(left, right, top, bottom EMU) {
	bodyPr := tf.ensureBodyPr()
	set := func(attr string, v EMU) {
		bodyPr.RemoveAttr(attr)
		bodyPr.CreateAttr(attr, strconv.FormatInt(int64(v), 10))
	}
	set("lIns", left)
	set("rIns", right)
	set("tIns", top)
	set("bIns", bottom)
}

func (tf *TextFrame) ensureBodyPr() *etree.Element {
	if bodyPr := tf.el.SelectElement("a:bodyPr"); bodyPr != nil {
		return bodyPr
	}
	bodyPr := etree.NewElement("a:bodyPr")
	tf.el.InsertChildAt(0, bodyPr)
	return bodyPr
}

// Paragraph 는 a:p 문단 하나
type Paragraph struct {
	el *etree.Element
}

// Text 는 문단 내 모든 런의 텍스트를 이어 붙인 값
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs() {
		sb.WriteString(r.Text())
	}
	return sb.String()
}

// Runs 는 문단의 런 목록
func (p *Paragraph) Runs() []*Run {
	var runs []*Run
	for _, r := range p.el.SelectElements("a:r") {
		runs = append(runs, &Run{el: r})
	}
	return runs
}

// AddRun 은 문단 끝(endParaRPr 앞)에 새 런을 추가한다.
func (p *Paragraph) AddRun(text string) *Run {
	r := etree.NewElement("a:r")
	t := r.CreateElement("a:t")
	t.SetText(text)
	if epr := p.el.SelectElement("a:endParaRPr"); epr != nil {
		p.el.InsertChildAt(epr.Index(), r)
	} else {
		p.el.AddChild(r)
	}
	return &Run{el: r}
}

// RemoveRun 은 런을 문단에서 제거한다.
func (p *Paragraph) RemoveRun(r *Run) {
	p.el.RemoveChild(r.el)
}

// SetAlignment 는 문단 정렬을 지정한다 (l, ctr, r, just).
func (p *Paragraph) SetAlignment(algn string) {
	pPr := p.el.SelectElement("a:pPr")
	if pPr == nil {
		pPr = etree.NewElement("a:pPr")
		p.el.InsertChildAt(0, pPr)
	}
	pPr.RemoveAttr("algn")
	pPr.CreateAttr("algn", algn)
}

// Run 은 a:r 런 하나. 런 단위 서식(a:rPr)은 기존 값을 건드리지 않는 한 유지된다.
type Run struct {
	el *etree.Element
}

// Text 는 런의 텍스트
func (r *Run) Text() string {
	if t := r.el.SelectElement("a:t"); t != nil {
		return t.Text()
	}
	return ""
}

// SetText 는 서식은 그대로 둔 채 런의 텍스트만 바꾼다.
func (r *Run) SetText(text string) {
	t := r.el.SelectElement("a:t")
	if t == nil {
		t = r.el.CreateElement("a:t")
	}
	t.SetText(text)
}

// SetFontSize 는 폰트 크기를 pt 단위로 지정한다.
func (r *Run) SetFontSize(pt float64) {
	rPr := r.ensureRPr()
	rPr.RemoveAttr("sz")
	rPr.CreateAttr("sz", strconv.Itoa(int(pt*100)))
}

// SetBold 는 굵기를 지정한다.
func (r *Run) SetBold(bold bool) {
	rPr := r.ensureRPr()
	rPr.RemoveAttr("b")
	if bold {
		rPr.CreateAttr("b", "1")
	} else {
		rPr.CreateAttr("b", "0")
	}
}

// SetColor 는 글자색을 지정한다.
func (r *Run) SetColor(red, green, blue uint8) {
	rPr := r.ensureRPr()
	if old := rPr.SelectElement("a:solidFill"); old != nil {
		rPr.RemoveChild(old)
	}
	fill := rPr.CreateElement("a:solidFill")
	clr := fill.CreateElement("a:srgbClr")
	clr.CreateAttr("val", hexColor(red, green, blue))
}

// FontSize 는 설정된 폰트 크기(pt). 없으면 0.
func (r *Run) FontSize() float64 {
	rPr := r.el.SelectElement("a:rPr")
	if rPr == nil {
		return 0
	}
	sz, err := strconv.Atoi(rPr.SelectAttrValue("sz", ""))
	if err != nil {
		return 0
	}
	return float64(sz) / 100
}

// a:rPr 은 a:t 앞에 와야 한다.
func (r *Run) ensureRPr() *etree.Element {
	if rPr := r.el.SelectElement("a:rPr"); rPr != nil {
		return rPr
	}
	rPr := etree.NewElement("a:rPr")
	r.el.InsertChildAt(0, rPr)
	return rPr
}
