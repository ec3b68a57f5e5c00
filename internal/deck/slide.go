package deck

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"
)

// Slide 는 pptx 슬라이드 하나. 모든 조작은 내부 etree 문서를 직접 고친다.
type Slide struct {
	doc       *etree.Document
	entryName string
	spTree    *etree.Element
	nextID    int
}

func newSlideFromDoc(doc *etree.Document, entryName string) (*Slide, error) {
	spTree := doc.FindElement("//p:cSld/p:spTree")
	if spTree == nil {
		return nil, fmt.Errorf("p:spTree 요소를 찾을 수 없습니다")
	}
	maxID := 1
	for _, cNvPr := range doc.FindElements("//p:cNvPr") {
		if id, err := strconv.Atoi(cNvPr.SelectAttrValue("id", "")); err == nil && id > maxID {
			maxID = id
		}
	}
	return &Slide{doc: doc, entryName: entryName, spTree: spTree, nextID: maxID + 1}, nil
}

// NewSlide 는 빈 슬라이드를 메모리에서 만든다. 테스트와 도구 코드용.
func NewSlide() *Slide {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	root := doc.CreateElement("p:sld")
	root.CreateAttr("xmlns:a", nsDrawing)
	root.CreateAttr("xmlns:p", nsPresentation)
	root.CreateAttr("xmlns:r", nsRelationships)
	cSld := root.CreateElement("p:cSld")
	spTree := cSld.CreateElement("p:spTree")
	nvGrpSpPr := spTree.CreateElement("p:nvGrpSpPr")
	cNvPr := nvGrpSpPr.CreateElement("p:cNvPr")
	cNvPr.CreateAttr("id", "1")
	cNvPr.CreateAttr("name", "")
	nvGrpSpPr.CreateElement("p:cNvGrpSpPr")
	nvGrpSpPr.CreateElement("p:nvPr")
	spTree.CreateElement("p:grpSpPr")
	return &Slide{doc: doc, entryName: "", spTree: spTree, nextID: 2}
}

// Shapes 는 슬라이드 최상위 도형 목록
func (s *Slide) Shapes() []*Shape {
	var shapes []*Shape
	for _, sp := range s.spTree.SelectElements("p:sp") {
		shapes = append(shapes, &Shape{el: sp, slide: s})
	}
	return shapes
}

// RemoveShape 는 도형을 슬라이드에서 제거한다.
func (s *Slide) RemoveShape(sh *Shape) {
	s.spTree.RemoveChild(sh.el)
}

// AddTextBox 는 텍스트 상자 도형을 추가한다.
func (s *Slide) AddTextBox(name string, text string, left, top, width, height EMU) *Shape {
	sh := s.addShape(name, left, top, width, height, "rect")
	txBody := etree.NewElement("p:txBody")
	txBody.CreateElement("a:bodyPr")
	txBody.CreateElement("a:lstStyle")
	txBody.CreateElement("a:p")
	sh.el.AddChild(txBody)
	tf := sh.TextFrame()
	if text != "" {
		tf.SetText(text)
	}
	return sh
}

// AddOval 은 버블 차트용 원형 도형을 추가한다.
func (s *Slide) AddOval(left, top, width, height EMU) *Shape {
	sh := s.addShape(fmt.Sprintf("Oval %d", s.nextID-1), left, top, width, height, "ellipse")
	txBody := etree.NewElement("p:txBody")
	txBody.CreateElement("a:bodyPr")
	txBody.CreateElement("a:lstStyle")
	txBody.CreateElement("a:p")
	sh.el.AddChild(txBody)
	return sh
}

func (s *Slide) addShape(name string, left, top, width, height EMU, prstGeom string) *Shape {
	sp := etree.NewElement("p:sp")

	nvSpPr := sp.CreateElement("p:nvSpPr")
	cNvPr := nvSpPr.CreateElement("p:cNvPr")
	cNvPr.CreateAttr("id", strconv.Itoa(s.nextID))
	cNvPr.CreateAttr("name", name)
	s.nextID++
	nvSpPr.CreateElement("p:cNvSpPr")
	nvSpPr.CreateElement("p:nvPr")

	spPr := sp.CreateElement("p:spPr")
	xfrm := spPr.CreateElement("a:xfrm")
	off := xfrm.CreateElement("a:off")
	off.CreateAttr("x", strconv.FormatInt(int64(left), 10))
	off.CreateAttr("y", strconv.FormatInt(int64(top), 10))
	ext := xfrm.CreateElement("a:ext")
	ext.CreateAttr("cx", strconv.FormatInt(int64(width), 10))
	ext.CreateAttr("cy", strconv.FormatInt(int64(height), 10))
	geom := spPr.CreateElement("a:prstGeom")
	geom.CreateAttr("prst", prstGeom)
	geom.CreateElement("a:avLst")

	s.spTree.AddChild(sp)
	return &Shape{el: sp, slide: s}
}

// Shape 는 슬라이드 위 도형 하나
type Shape struct {
	el    *etree.Element
	slide *Slide
}

// Slide 는 도형이 속한 슬라이드
func (sh *Shape) Slide() *Slide {
	return sh.slide
}

// Name 은 도형 이름 (p:cNvPr name 속성)
func (sh *Shape) Name() string {
	if cNvPr := sh.el.FindElement("p:nvSpPr/p:cNvPr"); cNvPr != nil {
		return cNvPr.SelectAttrValue("name", "")
	}
	return ""
}

// SetName 은 도형 이름을 바꾼다.
func (sh *Shape) SetName(name string) {
	if cNvPr := sh.el.FindElement("p:nvSpPr/p:cNvPr"); cNvPr != nil {
		cNvPr.RemoveAttr("name")
		cNvPr.CreateAttr("name", name)
	}
}

// Frame 은 도형의 위치와 크기를 EMU 로 반환한다. xfrm 이 없으면 ok=false.
func (sh *Shape) Frame() (left, top, width, height EMU, ok bool) {
	xfrm := sh.el.FindElement("p:spPr/a:xfrm")
	if xfrm == nil {
		return 0, 0, 0, 0, false
	}
	off := xfrm.SelectElement("a:off")
	ext := xfrm.SelectElement("a:ext")
	if off == nil || ext == nil {
		return 0, 0, 0, 0, false
	}
	x, err1 := strconv.ParseInt(off.SelectAttrValue("x", ""), 10, 64)
	y, err2 := strconv.ParseInt(off.SelectAttrValue("y", ""), 10, 64)
	cx, err3 := strconv.ParseInt(ext.SelectAttrValue("cx", ""), 10, 64)
	cy, err4 := strconv.ParseInt(ext.SelectAttrValue("cy", ""), 10, 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return 0, 0, 0, 0, false
	}
	return EMU(x), EMU(y), EMU(cx), EMU(cy), true
}

// HasTextFrame 은 도형이 텍스트 프레임을 갖는지 여부
func (sh *Shape) HasTextFrame() bool {
	return sh.el.SelectElement("p:txBody") != nil
}

// TextFrame 은 도형의 텍스트 프레임. 없으면 nil.
func (sh *Shape) TextFrame() *TextFrame {
	txBody := sh.el.SelectElement("p:txBody")
	if txBody == nil {
		return nil
	}
	return &TextFrame{el: txBody}
}

// SetFill 은 도형을 단색으로 채운다.
func (sh *Shape) SetFill(r, g, b uint8) {
	spPr := sh.el.SelectElement("p:spPr")
	if spPr == nil {
		return
	}
	if old := spPr.SelectElement("a:solidFill"); old != nil {
		spPr.RemoveChild(old)
	}
	fill := etree.NewElement("a:solidFill")
	clr := fill.CreateElement("a:srgbClr")
	clr.CreateAttr("val", hexColor(r, g, b))
	// solidFill 은 prstGeom 다음에 와야 한다.
	if geom := spPr.SelectElement("a:prstGeom"); geom != nil {
		spPr.InsertChildAt(geom.Index()+1, fill)
	} else {
		spPr.AddChild(fill)
	}
}

// SetLine 은 도형 외곽선 색과 두께(pt)를 지정한다.
func (sh *Shape) SetLine(r, g, b uint8, widthPt float64) {
	spPr := sh.el.SelectElement("p:spPr")
	if spPr == nil {
		return
	}
	if old := spPr.SelectElement("a:ln"); old != nil {
		spPr.RemoveChild(old)
	}
	ln := spPr.CreateElement("a:ln")
	// 선 두께는 1pt = 12700 EMU
	ln.CreateAttr("w", strconv.Itoa(int(widthPt*12700)))
	fill := ln.CreateElement("a:solidFill")
	clr := fill.CreateElement("a:srgbClr")
	clr.CreateAttr("val", hexColor(r, g, b))
}

func hexColor(r, g, b uint8) string {
	return fmt.Sprintf("%02X%02X%02X", r, g, b)
}
