package services

import (
	"TrendReport-admin/internal/models"
	"encoding/json"
	"fmt"
	"log"
	"os"
)

// LoadPhraseData 는 프레이즈 분석 JSON 파일을 읽는다.
// 파일이 없으면 경고만 남기고 빈 목록으로 진행한다. 데이터 없이도
// 리포트의 나머지(직접 치환 태그 등)는 만들 수 있어야 하기 때문이다.
func LoadPhraseData(path string) ([]models.PhraseRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("경고：프레이즈 데이터 파일이 없습니다: %s. 빈 데이터로 진행합니다.\n", path)
			return nil, nil
		}
		return nil, fmt.Errorf("프레이즈 데이터 '%s' 읽기 실패: %w", path, err)
	}

	var records []models.PhraseRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("프레이즈 데이터 '%s' 해석 실패: %w", path, err)
	}
	log.Printf("정보：프레이즈 데이터 로드 완료: %d건 (%s)\n", len(records), path)
	return records, nil
}
