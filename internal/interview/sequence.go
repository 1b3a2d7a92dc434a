package interview

import "sort"

// Sequence возвращает новый срез: общие вопросы перед специфичными,
// внутри каждой группы по возрастанию Order. Вопрос без Order идет первым
// в своей группе, равные ключи сохраняют исходный порядок. Вход не изменяется.
func Sequence(questions []Question) []Question {
	general := make([]Question, 0, len(questions))
	specific := make([]Question, 0, len(questions))

	for _, q := range questions {
		if q.IsGeneral {
			general = append(general, q)
		} else {
			specific = append(specific, q)
		}
	}

	sortByOrder(general)
	sortByOrder(specific)

	return append(general, specific...)
}

func sortByOrder(questions []Question) {
	sort.SliceStable(questions, func(i, j int) bool {
		return orderLess(questions[i].Order, questions[j].Order)
	})
}

func orderLess(a, b *int) bool {
	switch {
	case a == nil && b == nil:
		return false
	case a == nil:
		return true
	case b == nil:
		return false
	default:
		return *a < *b
	}
}

// Cursor отслеживает текущую позицию в упорядоченном списке вопросов
type Cursor struct {
	questions []Question
	index     int
}

// NewCursor создает курсор на первом вопросе
func NewCursor(questions []Question) *Cursor {
	return &Cursor{questions: questions}
}

// Current возвращает текущий вопрос, false если вопросы закончились
func (c *Cursor) Current() (Question, bool) {
	if c.Done() {
		return Question{}, false
	}
	return c.questions[c.index], true
}

// Next сдвигает курсор вперед; за последним вопросом курсор в состоянии Done
func (c *Cursor) Next() bool {
	if c.Done() {
		return false
	}
	c.index++
	return !c.Done()
}

// Prev сдвигает курсор назад, false на первом вопросе
func (c *Cursor) Prev() bool {
	if c.index == 0 {
		return false
	}
	c.index--
	return true
}

func (c *Cursor) Index() int { return c.index }

func (c *Cursor) Len() int { return len(c.questions) }

func (c *Cursor) Done() bool { return c.index >= len(c.questions) }

// Progress возвращает номер текущего вопроса (с единицы) и их общее число
func (c *Cursor) Progress() (int, int) {
	pos := c.index + 1
	if pos > len(c.questions) {
		pos = len(c.questions)
	}
	return pos, len(c.questions)
}
