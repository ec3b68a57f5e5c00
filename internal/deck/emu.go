package deck

// EMU (English Metric Unit) 는 OOXML 좌표 단위. 1인치 = 914400 EMU.
type EMU int64

const EMUPerInch = 914400

// Inches 는 인치를 EMU 로 변환
func Inches(in float64) EMU {
	return EMU(in * EMUPerInch)
}

// Inches 는 EMU 를 인치로 변환
func (e EMU) Inches() float64 {
	return float64(e) / EMUPerInch
}
