package view

import (
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/webtor-io/ophim-bot/models"
	"github.com/webtor-io/ophim-bot/services/navigation"
)

const (
	maxListed      = 5
	maxEpisodes    = 10
	serversPerRow  = 4
	maxLabelLen    = 30
	maxSynopsisLen = 300
	maxDirectors   = 3
	maxActors      = 5
)

var (
	divider = strings.Repeat("─", 30)
	rule    = strings.Repeat("━", 20)
)

const welcomeText = `
🎬 *Chào mừng đến với Bot Tìm Phim!*

Tôi có thể giúp bạn tìm kiếm thông tin về các bộ phim.

📝 *Cách sử dụng:*
- Gửi tên phim bạn muốn tìm
- Bot sẽ tìm kiếm và hiển thị kết quả
- Bấm vào các nút để xem chi tiết hoặc link phim

💡 *Lệnh:*
/start - Bắt đầu
/help - Hướng dẫn sử dụng
/danhmuc - Xem danh mục phim

Hãy gửi tên phim để bắt đầu tìm kiếm! 🍿
`

const helpText = `
📖 *Hướng dẫn sử dụng Bot Tìm Phim*

1️⃣ *Tìm kiếm phim:*
   - Gửi tên phim bạn muốn tìm
   - Ví dụ: "Avengers", "Doraemon", "Bố Già"

2️⃣ *Xem kết quả:*
   - Bot sẽ hiển thị danh sách phim tìm được
   - Bấm "Xem chi tiết" để xem thông tin đầy đủ
   - Bấm "Link phim" để lấy đường dẫn xem phim

3️⃣ *Duyệt phim theo danh mục:*
   - Dùng /danhmuc để xem các danh mục phổ biến
   - Chọn danh mục muốn xem

💡 Bot sử dụng API tìm kiếm chính thức từ Ophim.
`

const episodesHint = "\n💡 *Hướng dẫn:*\n" +
	"▸ *Stream M3U8*: Link video trực tiếp (HLS)\n" +
	"▸ *Player Embed*: Trang player đầy đủ\n"

// Builder renders catalog data into views. It holds no per-user state.
type Builder struct {
	categories models.Categories
}

func New(categories models.Categories) *Builder {
	return &Builder{categories: categories}
}

func (s *Builder) Welcome() *View {
	return &View{Text: welcomeText, Markdown: true}
}

func (s *Builder) Help() *View {
	return &View{Text: helpText, Markdown: true}
}

func (s *Builder) CategoryMenu() *View {
	var kb Keyboard
	for _, c := range s.categories {
		kb = kb.with(row(button(c.Name, navigation.Category(c.Slug))))
	}
	return &View{
		Text:     "🎬 *Danh mục phim:*\n\nChọn danh mục bạn muốn xem:\n",
		Keyboard: kb,
		Markdown: true,
	}
}

func (s *Builder) EmptyQuery() *View {
	return &View{Text: "Vui lòng nhập tên phim bạn muốn tìm!"}
}

func (s *Builder) Searching(keyword string) *View {
	return &View{Text: fmt.Sprintf("🔍 Đang tìm kiếm phim '%s'...", keyword)}
}

func (s *Builder) NoResults(keyword string) *View {
	return &View{Text: fmt.Sprintf("❌ Không tìm thấy phim nào với từ khóa '%s'.\n\n"+
		"💡 Hãy thử:\n"+
		"- Kiểm tra lại chính tả\n"+
		"- Sử dụng tên tiếng Anh hoặc tên gốc\n"+
		"- Tìm kiếm với từ khóa ngắn gọn hơn", keyword)}
}

// SearchResults lists at most five movies. The header reports the full count.
func (s *Builder) SearchResults(keyword string, movies []models.MovieSummary) *View {
	if len(movies) == 0 {
		return s.NoResults(keyword)
	}
	header := fmt.Sprintf("Tìm thấy %d kết quả cho '%s':", len(movies), keyword)
	return &View{
		Text:     "🎬 " + bold(header) + "\n\n" + list(movies),
		Keyboard: movieRows(movies),
		Markdown: true,
	}
}

func (s *Builder) LoadingCategory(slug string) *View {
	return &View{Text: fmt.Sprintf("🔍 Đang tải %s...", s.categories.NameOf(slug))}
}

func (s *Builder) CategoryResults(slug string, movies []models.MovieSummary) *View {
	name := s.categories.NameOf(slug)
	if len(movies) == 0 {
		return &View{Text: fmt.Sprintf("❌ Không thể tải phim từ danh mục '%s'.\n\nVui lòng thử lại sau!", name)}
	}
	text := "🎬 " + bold(name) + "\n\n" +
		fmt.Sprintf("📋 Hiển thị %d phim:\n\n", min(len(movies), maxListed)) +
		list(movies)
	kb := movieRows(movies).with(row(button("🔙 Quay lại danh mục", navigation.BackToCategories())))
	return &View{Text: text, Keyboard: kb, Markdown: true}
}

func (s *Builder) Detail(d *models.MovieDetail) *View {
	var b strings.Builder
	b.WriteString(summary(&d.MovieSummary))
	if len(d.Categories) > 0 {
		fmt.Fprintf(&b, "🎭 Thể loại: %s\n", join(d.Categories, len(d.Categories)))
	}
	if len(d.Countries) > 0 {
		fmt.Fprintf(&b, "🌍 Quốc gia: %s\n", join(d.Countries, len(d.Countries)))
	}
	fmt.Fprintf(&b, "⏱️ Thời lượng: %s\n", EscapeMarkdown(d.Runtime))
	fmt.Fprintf(&b, "📺 Tập: %s/%s\n", EscapeMarkdown(d.EpisodeCurrent), EscapeMarkdown(d.EpisodeTotal))
	if len(d.Directors) > 0 {
		fmt.Fprintf(&b, "🎬 Đạo diễn: %s\n", join(d.Directors, maxDirectors))
	}
	if len(d.Actors) > 0 {
		fmt.Fprintf(&b, "🎭 Diễn viên: %s\n", join(d.Actors, maxActors))
	}
	b.WriteString(ratingLine(d.DisplayRating()))
	if d.Views > 0 {
		fmt.Fprintf(&b, "👁️ Lượt xem: %s\n", FormatNumber(d.Views))
	}
	if d.Synopsis != "" {
		fmt.Fprintf(&b, "\n📖 Nội dung:\n%s\n", EscapeMarkdown(Truncate(d.Synopsis, maxSynopsisLen)))
	}
	kb := Keyboard{}.with(row(
		button("🔗 Lấy link phim", navigation.Links(d.Slug)),
		button("🔙 Quay lại", navigation.Back()),
	))
	return &View{
		Text:     b.String(),
		PhotoURL: d.PhotoURL(),
		Keyboard: kb,
		Markdown: true,
	}
}

// LinksMenu offers video links only when d has servers and other links
// only when links is non-empty.
func (s *Builder) LinksMenu(d *models.MovieDetail, links []models.Link) *View {
	var kb Keyboard
	if len(d.Servers) > 0 {
		kb = kb.with(row(button("🎬 Xem Link Video", navigation.Videos(d.Slug, 0))))
	}
	if len(links) > 0 {
		kb = kb.with(row(button("🔗 Link khác (Poster, Trailer)", navigation.Basic(d.Slug))))
	}
	kb = kb.with(row(button("🔙 Quay lại", navigation.Back())))
	return &View{
		Text:     "🔗 " + bold("Link cho phim: "+d.Name) + "\n\nChọn loại link bạn muốn xem:",
		Keyboard: kb,
		Markdown: true,
	}
}

// Episodes renders one server of d. An out of range index falls back to
// the first server.
func (s *Builder) Episodes(d *models.MovieDetail, index int) *View {
	if len(d.Servers) == 0 {
		return s.NoVideoLinks()
	}
	if index < 0 || index >= len(d.Servers) {
		index = 0
	}
	server := d.Servers[index]

	var b strings.Builder
	fmt.Fprintf(&b, "🎬 %s\n", bold(d.Name))
	fmt.Fprintf(&b, "📡 Server: %s\n", bold(server.Name))
	fmt.Fprintf(&b, "📺 Có %d tập\n\n", len(server.Items))
	b.WriteString(rule + "\n\n")
	for i, ep := range server.Items[:min(len(server.Items), maxEpisodes)] {
		b.WriteString(bold(fmt.Sprintf("%d. %s", i+1, ep.Name)) + "\n")
		if ep.StreamURL != "" {
			fmt.Fprintf(&b, "   🎥 [Stream M3U8](%s)\n", linkURL(ep.StreamURL))
		}
		if ep.EmbedURL != "" {
			fmt.Fprintf(&b, "   🎬 [Player Embed](%s)\n", linkURL(ep.EmbedURL))
		}
		b.WriteString("\n")
	}
	if rest := len(server.Items) - maxEpisodes; rest > 0 {
		fmt.Fprintf(&b, "\n_... và %d tập khác_\n", rest)
	}
	b.WriteString(episodesHint)

	var kb Keyboard
	if len(d.Servers) > 1 {
		selector := make([]Button, 0, len(d.Servers))
		for i := range d.Servers {
			label := fmt.Sprintf("S%d", i+1)
			if i == index {
				label = "• " + label + " •"
			}
			selector = append(selector, button(label, navigation.Videos(d.Slug, i)))
		}
		selector = row(selector...)
		for len(selector) > 0 {
			n := min(len(selector), serversPerRow)
			kb = kb.with(selector[:n])
			selector = selector[n:]
		}
	}
	kb = kb.with(row(button("🔙 Quay lại", navigation.Links(d.Slug))))
	return &View{
		Text:           b.String(),
		Keyboard:       kb,
		Markdown:       true,
		DisablePreview: true,
	}
}

func (s *Builder) BasicLinks(d *models.MovieDetail, links []models.Link) *View {
	if len(links) == 0 {
		return s.NoLinks()
	}
	var b strings.Builder
	b.WriteString("🔗 " + bold("Link khác cho phim: "+d.Name) + "\n\n")
	for _, l := range links {
		fmt.Fprintf(&b, "▸ [%s](%s)\n", EscapeMarkdown(l.Label), linkURL(l.URL))
	}
	return &View{
		Text:     b.String(),
		Keyboard: Keyboard{}.with(row(button("🔙 Quay lại", navigation.Links(d.Slug)))),
		Markdown: true,
	}
}

func (s *Builder) Continue() *View {
	return &View{Text: "Gửi tên phim để tiếp tục tìm kiếm! 🔍"}
}

func (s *Builder) MovieUnavailable() *View {
	return &View{Text: "❌ Không thể lấy thông tin phim!"}
}

func (s *Builder) DetailUnavailable() *View {
	return &View{Text: "❌ Không thể lấy thông tin chi tiết phim!"}
}

func (s *Builder) NoVideoLinks() *View {
	return &View{Text: "❌ Không tìm thấy link video nào cho phim này!"}
}

func (s *Builder) NoLinks() *View {
	return &View{Text: "❌ Không tìm thấy link nào!"}
}

// TryAgain is shown when the catalog could not be reached.
func (s *Builder) TryAgain() *View {
	return &View{Text: "⚠️ Không kết nối được tới máy chủ phim. Vui lòng thử lại sau!"}
}

func summary(m *models.MovieSummary) string {
	return fmt.Sprintf("🎬 %s\n", bold(m.Name)) +
		fmt.Sprintf("📝 Tên gốc: %s\n", EscapeMarkdown(m.OriginName)) +
		fmt.Sprintf("📅 Năm: %s\n", EscapeMarkdown(m.Year)) +
		fmt.Sprintf("🎞️ Chất lượng: %s | Ngôn ngữ: %s\n", EscapeMarkdown(m.Quality), EscapeMarkdown(m.Language))
}

func list(movies []models.MovieSummary) string {
	var b strings.Builder
	for i := range movies[:min(len(movies), maxListed)] {
		fmt.Fprintf(&b, "%d. %s\n%s\n\n", i+1, summary(&movies[i]), divider)
	}
	return b.String()
}

func movieRows(movies []models.MovieSummary) Keyboard {
	var kb Keyboard
	for i, m := range movies[:min(len(movies), maxListed)] {
		name := m.Name
		if name == models.NA {
			name = fmt.Sprintf("Phim %d", i+1)
		}
		kb = kb.with(row(
			button("📖 "+Truncate(name, maxLabelLen), navigation.Detail(m.Slug)),
			button("🔗 Link phim", navigation.Links(m.Slug)),
		))
	}
	return kb
}

func ratingLine(r *models.Rating) string {
	if r == nil {
		return ""
	}
	avg := strconv.FormatFloat(r.VoteAverage, 'f', -1, 64)
	if r.Source == models.RatingSourceIMDB {
		return fmt.Sprintf("⭐ IMDB: %s/10 (%s votes)\n", avg, FormatNumber(r.VoteCount))
	}
	return fmt.Sprintf("⭐ %s: %s/10\n", r.Source, avg)
}

func button(label string, in navigation.Intent) Button {
	return Button{Label: label, Token: navigation.Encode(in)}
}

// row drops buttons whose token does not fit the transport limit.
func row(buttons ...Button) []Button {
	res := make([]Button, 0, len(buttons))
	for _, b := range buttons {
		if !navigation.Fits(b.Token) {
			log.WithFields(log.Fields{
				"label": b.Label,
				"token": b.Token,
			}).Warn("dropping button with oversized token")
			continue
		}
		res = append(res, b)
	}
	return res
}

func (s Keyboard) with(buttons []Button) Keyboard {
	if len(buttons) == 0 {
		return s
	}
	return append(s, buttons)
}
