package composer

import (
	"fmt"
	"strings"
	"time"

	"github.com/innocurve/inoclone/internal/persona"
	"github.com/innocurve/inoclone/internal/storage"
)

// kst is the site's local timezone. KST has no daylight saving, so a fixed
// offset is exact.
var kst = time.FixedZone("KST", 9*60*60)

const personaTraits = `성격 및 특징:
- 비전 있는 리더 스타일로, 목표 지향적이며 새로운 것을 개척하는 것을 좋아합니다.
- 주어진 길을 따르기보다는 스스로 길을 만들어가는 성향입니다.
- 논리적이면서도 실행력이 뛰어나, 생각을 빠르게 실천으로 옮기는 특징이 있습니다.
- 사회적 가치를 중요시하며, 특히 AI와 청년들을 연결해 미래를 만들어가는 데 큰 관심이 있습니다.
- 주변 사람들에게 긍정적인 영향을 주며 동기부여를 잘하는 편입니다.`

const companyInfo = `소속 회사 정보:
회사명: 이노커브(INNOCURVE)
대표: %s
주요 사업: AI 기반의 고객 맞춤형 컨설팅
특징: 혁신적인 AI 솔루션을 통한 맞춤형 비즈니스 컨설팅 제공`

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Composer assembles the grounding system instruction for the generation
// provider from the owner profile, professional records, retrieved
// knowledge, and an optionally resolved mentioned person.
type Composer struct {
	representative string
	clock          Clock
}

// New creates a Composer. representative is the company representative's
// full name, used in the company block and etiquette rules.
func New(representative string) *Composer {
	return &Composer{representative: representative, clock: realClock{}}
}

// NewWithClock creates a Composer with a custom clock (for testing).
func NewWithClock(representative string, clock Clock) *Composer {
	return &Composer{representative: representative, clock: clock}
}

// Build produces the system instruction. The mentioned-person reference
// block, when present, is always appended after the primary block, never in
// place of it.
func (c *Composer) Build(owner storage.Owner, experiences []storage.Experience, projects []storage.Project, knowledge string, mentioned *persona.Person) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "당신은 %s의 AI 클론입니다. 아래 정보를 바탕으로 1인칭으로 자연스럽게 대화하세요.\n", owner.Name)
	fmt.Fprintf(&sb, "현재 시각은 %s 입니다.\n\n", formatKoreanTime(c.clock.Now().In(kst)))

	sb.WriteString(personaTraits)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, companyInfo, c.representative)
	sb.WriteString("\n\n")

	sb.WriteString("기본 정보:\n")
	sb.WriteString(formatOwnerInfo(owner))
	sb.WriteString("\n\n경력:\n")
	sb.WriteString(FormatExperiences(experiences))
	sb.WriteString("\n\n프로젝트:\n")
	sb.WriteString(FormatProjects(projects))

	if knowledge != "" {
		sb.WriteString("\n\n참고 문서:\n")
		sb.WriteString(knowledge)
	}

	sb.WriteString("\n\n답변 시 주의사항:\n")
	fmt.Fprintf(&sb, "- %s님을 언급할 때는 \"%s 대표님\"으로 호칭\n", c.representative, c.representative)
	sb.WriteString("- 다른 분들을 언급할 때는 이름 뒤에 \"님\"을 붙여서 호칭 (예: \"이재권님\", \"김철수님\")\n")
	sb.WriteString("- 항상 정중하고 예의 바른 어투 사용\n")
	sb.WriteString("- 다른 사람에 대해 질문받았을 때는 현재 직책/역할만 간단히 답변\n")
	sb.WriteString("- 예시 답변: \"이재권님은 저희 회사의 CTO이십니다.\"")

	if mentioned != nil {
		sb.WriteString("\n\n")
		sb.WriteString(formatMentionedPerson(mentioned))
	}

	return sb.String()
}

func formatMentionedPerson(p *persona.Person) string {
	var sb strings.Builder

	sb.WriteString("# 비공개 참조 정보 (추가 질문이 있을 때만 사용)\n")
	fmt.Fprintf(&sb, "%s%s의 정보:\n", p.Owner.Name, p.Honorific)
	sb.WriteString("기본 정보:\n")
	fmt.Fprintf(&sb, "이름: %s%s\n", p.Owner.Name, p.Honorific)
	fmt.Fprintf(&sb, "나이: %d\n", p.Owner.Age)
	fmt.Fprintf(&sb, "취미: %s\n", strings.Join(p.Owner.Hobbies, ", "))
	fmt.Fprintf(&sb, "가치관: %s\n", p.Owner.Values)
	if p.Owner.Country != "" {
		fmt.Fprintf(&sb, "나라: %s\n", p.Owner.Country)
	}
	if p.Owner.Birth != "" {
		fmt.Fprintf(&sb, "생년월일: %s\n", p.Owner.Birth)
	}
	sb.WriteString("\n경력:\n")
	sb.WriteString(FormatExperiences(p.Experiences))
	sb.WriteString("\n\n프로젝트:\n")
	sb.WriteString(FormatProjects(p.Projects))

	return sb.String()
}

func formatOwnerInfo(o storage.Owner) string {
	return fmt.Sprintf("이름: %s\n나이: %d\n취미: %s\n가치관: %s\n나라: %s\n생년월일: %s\nowner_id: %d",
		o.Name, o.Age, strings.Join(o.Hobbies, ", "), o.Values, o.Country, o.Birth, o.ID)
}

// FormatExperiences renders experience records one per line, company and
// position first, description indented below.
func FormatExperiences(experiences []storage.Experience) string {
	lines := make([]string, len(experiences))
	for i, e := range experiences {
		lines[i] = fmt.Sprintf("- %s의 %s (%s)\n  %s", e.Company, e.Position, e.Period, e.Description)
	}
	return strings.Join(lines, "\n")
}

// FormatProjects renders project records one per line with the tech stack
// joined by commas.
func FormatProjects(projects []storage.Project) string {
	lines := make([]string, len(projects))
	for i, p := range projects {
		lines[i] = fmt.Sprintf("- %s: %s (기술 스택: %s)", p.Title, p.Description, strings.Join(p.TechStack, ", "))
	}
	return strings.Join(lines, "\n")
}

// formatKoreanTime renders a timestamp the way ko-KR locale formatting
// does, e.g. "2025. 1. 2. 오후 3:04:05".
func formatKoreanTime(t time.Time) string {
	meridiem := "오전"
	hour := t.Hour()
	if hour >= 12 {
		meridiem = "오후"
	}
	hour12 := hour % 12
	if hour12 == 0 {
		hour12 = 12
	}
	return fmt.Sprintf("%d. %d. %d. %s %d:%02d:%02d",
		t.Year(), int(t.Month()), t.Day(), meridiem, hour12, t.Minute(), t.Second())
}
