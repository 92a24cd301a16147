package models

type Category struct {
	Name string
	Slug string
}

type Categories []Category

const DefaultCategoryName = "Danh mục"

// DefaultCategories returns the fixed category table shown in the menu.
func DefaultCategories() Categories {
	return Categories{
		{Name: "🎬 Phim mới", Slug: "phim-moi-cap-nhat"},
		{Name: "🎭 Phim lẻ", Slug: "phim-le"},
		{Name: "📺 Phim bộ", Slug: "phim-bo"},
		{Name: "🎉 Hoạt hình", Slug: "hoat-hinh"},
		{Name: "🎬 Phim viện tưởng", Slug: "phim-vien-tuong"},
		{Name: "🍿 TV Shows", Slug: "tv-shows"},
	}
}

func (s Categories) NameOf(slug string) string {
	for _, c := range s {
		if c.Slug == slug {
			return c.Name
		}
	}
	return DefaultCategoryName
}
